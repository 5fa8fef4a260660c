package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"phonestore/internal/domain"
	"phonestore/internal/log"
	"phonestore/internal/services"
	"phonestore/internal/validate"
)

// APIHandler serves the catalog and the caller's cart as JSON.
type APIHandler struct {
	Catalog  *services.CatalogService
	Sessions *services.SessionService
}

type cartItemView struct {
	Phone           domain.PhoneModel    `json:"phone"`
	SelectedColor   string               `json:"selectedColor"`
	SelectedStorage domain.StorageOption `json:"selectedStorage"`
	Quantity        int                  `json:"quantity"`
	Subtotal        float64              `json:"subtotal"`
}

type cartView struct {
	Items      []cartItemView `json:"items"`
	ItemCount  int            `json:"itemCount"`
	TotalPrice float64        `json:"totalPrice"`
}

func toCartView(sess *services.CartSession) cartView {
	items := sess.Items()
	out := cartView{Items: make([]cartItemView, 0, len(items)), ItemCount: sess.ItemCount(), TotalPrice: sess.TotalPrice()}
	for _, it := range items {
		out.Items = append(out.Items, cartItemView{
			Phone:           it.Phone.Model(),
			SelectedColor:   it.SelectedColor,
			SelectedStorage: it.SelectedStorage,
			Quantity:        it.Quantity,
			Subtotal:        it.Subtotal(),
		})
	}
	return out
}

func toModels(phones []domain.Phone) []domain.PhoneModel {
	out := make([]domain.PhoneModel, 0, len(phones))
	for _, p := range phones {
		out = append(out, p.Model())
	}
	return out
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func (h *APIHandler) Phones(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	q := ""
	if strings.TrimSpace(rawQ) != "" {
		var ok bool
		if q, ok = validate.Q(rawQ); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return jsonError(c, fiber.StatusBadRequest, "invalid query")
		}
	}
	phones, err := h.Catalog.Search(c.UserContext(), q)
	if err != nil {
		log.Error(c, "catalog.list.error", err, map[string]any{"q": q})
		return jsonError(c, fiber.StatusBadGateway, "catalog unavailable")
	}
	return c.JSON(fiber.Map{"phones": toModels(phones), "count": len(phones)})
}

func (h *APIHandler) Phone(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid phone id")
	}
	p, err := h.Catalog.Get(c.UserContext(), id)
	if errors.Is(err, domain.ErrPhoneNotFound) {
		return jsonError(c, fiber.StatusNotFound, "phone not found")
	}
	if err != nil {
		log.Error(c, "catalog.get.error", err, map[string]any{"phone": id})
		return jsonError(c, fiber.StatusBadGateway, "catalog unavailable")
	}
	similar, err := h.Catalog.SimilarTo(c.UserContext(), p)
	if err != nil {
		log.Error(c, "catalog.similar.error", err, map[string]any{"phone": id})
		similar = nil
	}
	return c.JSON(fiber.Map{"phone": p.Model(), "similar": toModels(similar)})
}

// openSession writes the error response itself and reports false on failure.
func (h *APIHandler) openSession(c *fiber.Ctx) (*services.CartSession, bool) {
	sess, err := h.Sessions.Open(c.UserContext(), ensureSID(c))
	if err != nil {
		log.Error(c, "cart.load.fail", err, nil)
		_ = jsonError(c, fiber.StatusInternalServerError, "could not load cart")
		return nil, false
	}
	return sess, true
}

func (h *APIHandler) Cart(c *fiber.Ctx) error {
	sess, ok := h.openSession(c)
	if !ok {
		return nil
	}
	return c.JSON(toCartView(sess))
}

// bindLine parses a JSON line body. Like openSession it answers the
// request itself when it reports false.
func bindLine(c *fiber.Ctx) (lineInput, bool) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		_ = jsonError(c, fiber.StatusUnsupportedMediaType, "content type must be application/json")
		return lineInput{}, false
	}
	var in lineInput
	if err := c.BodyParser(&in); err != nil {
		_ = jsonError(c, fiber.StatusBadRequest, "invalid JSON body")
		return lineInput{}, false
	}
	in, err := in.clean()
	if err != nil {
		log.Security(c, "validation.fail", map[string]any{"field": "cart"})
		_ = jsonError(c, fiber.StatusBadRequest, err.Error())
		return lineInput{}, false
	}
	return in, true
}

func (h *APIHandler) AddItem(c *fiber.Ctx) error {
	in, ok := bindLine(c)
	if !ok {
		return nil
	}
	phone, opt, err := resolveVariant(c, h.Catalog, in)
	if errors.Is(err, errBadLine) {
		log.Security(c, "validation.fail", map[string]any{"field": "variant", "phone": in.PhoneID})
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		log.Error(c, "catalog.get.fail", err, map[string]any{"phone": in.PhoneID})
		return jsonError(c, fiber.StatusBadGateway, "catalog unavailable")
	}
	sess, ok := h.openSession(c)
	if !ok {
		return nil
	}
	if err := sess.Add(c.UserContext(), phone, in.Color, opt); err != nil {
		log.Error(c, "cart.add.fail", err, map[string]any{"phone": in.PhoneID})
		return jsonError(c, fiber.StatusInternalServerError, "could not update cart")
	}
	log.Audit(c, "cart.add", map[string]any{"phone": in.PhoneID, "color": in.Color, "storage": in.Storage})
	return c.Status(fiber.StatusCreated).JSON(toCartView(sess))
}

func (h *APIHandler) RemoveItem(c *fiber.Ctx) error {
	in, ok := bindLine(c)
	if !ok {
		return nil
	}
	sess, ok := h.openSession(c)
	if !ok {
		return nil
	}
	if err := sess.Remove(c.UserContext(), in.PhoneID, in.Color, in.Storage); err != nil {
		log.Error(c, "cart.remove.fail", err, map[string]any{"phone": in.PhoneID})
		return jsonError(c, fiber.StatusInternalServerError, "could not update cart")
	}
	log.Audit(c, "cart.remove", map[string]any{"phone": in.PhoneID, "color": in.Color, "storage": in.Storage})
	return c.JSON(toCartView(sess))
}

func (h *APIHandler) ClearCart(c *fiber.Ctx) error {
	sess, ok := h.openSession(c)
	if !ok {
		return nil
	}
	if err := sess.Clear(c.UserContext()); err != nil {
		log.Error(c, "cart.clear.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not update cart")
	}
	log.Audit(c, "cart.clear", nil)
	return c.JSON(toCartView(sess))
}
