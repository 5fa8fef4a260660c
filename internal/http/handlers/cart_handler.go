package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"phonestore/internal/domain"
	applog "phonestore/internal/log"
	"phonestore/internal/services"
	"phonestore/internal/validate"
)

type CartHandler struct {
	Catalog  *services.CatalogService
	Sessions *services.SessionService
}

// lineInput identifies a line item as posted by a form or JSON body.
type lineInput struct {
	PhoneID string `json:"phoneId" form:"phoneId" query:"phoneId"`
	Color   string `json:"color" form:"color" query:"color"`
	Storage string `json:"storage" form:"storage" query:"storage"`
}

var errBadLine = errors.New("invalid phone, color or storage")

func (in lineInput) clean() (lineInput, error) {
	var ok1, ok2, ok3 bool
	in.PhoneID, ok1 = validate.ID(in.PhoneID)
	in.Color, ok2 = validate.Label(in.Color)
	in.Storage, ok3 = validate.Label(in.Storage)
	if !ok1 || !ok2 || !ok3 {
		return lineInput{}, errBadLine
	}
	return in, nil
}

// resolveVariant looks up the phone and checks the color and storage belong to it.
func resolveVariant(c *fiber.Ctx, catalog *services.CatalogService, in lineInput) (domain.Phone, domain.StorageOption, error) {
	phone, err := catalog.Get(c.UserContext(), in.PhoneID)
	if err != nil {
		if errors.Is(err, domain.ErrPhoneNotFound) {
			return domain.Phone{}, domain.StorageOption{}, errBadLine
		}
		return domain.Phone{}, domain.StorageOption{}, err
	}
	opt, ok := phone.StorageOption(in.Storage)
	if !ok || !phone.HasColor(in.Color) {
		return domain.Phone{}, domain.StorageOption{}, errBadLine
	}
	return phone, opt, nil
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sess, err := h.Sessions.Open(c.UserContext(), ensureSID(c))
	if err != nil {
		applog.Error(c, "cart.load.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{
		"Items":     sess.Items(),
		"Total":     sess.TotalPrice(),
		"CartCount": sess.ItemCount(),
	})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in lineInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid form")
	}
	in, err := in.clean()
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "cart"})
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}
	phone, opt, err := resolveVariant(c, h.Catalog, in)
	if errors.Is(err, errBadLine) {
		applog.Security(c, "validation.fail", map[string]any{"field": "variant", "phone": in.PhoneID})
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}
	if err != nil {
		applog.Error(c, "catalog.get.fail", err, map[string]any{"phone": in.PhoneID})
		return c.Status(fiber.StatusBadGateway).SendString("Could not reach the catalog. Please retry.")
	}

	sess, err := h.Sessions.Open(c.UserContext(), ensureSID(c))
	if err != nil {
		applog.Error(c, "cart.load.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not load your cart")
	}
	if err := sess.Add(c.UserContext(), phone, in.Color, opt); err != nil {
		applog.Error(c, "cart.add.fail", err, map[string]any{"phone": in.PhoneID})
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update your cart")
	}
	applog.Audit(c, "cart.add", map[string]any{"phone": in.PhoneID, "color": in.Color, "storage": in.Storage})
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	var in lineInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid form")
	}
	in, err := in.clean()
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "cart"})
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}
	sess, err := h.Sessions.Open(c.UserContext(), ensureSID(c))
	if err != nil {
		applog.Error(c, "cart.load.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not load your cart")
	}
	if err := sess.Remove(c.UserContext(), in.PhoneID, in.Color, in.Storage); err != nil {
		applog.Error(c, "cart.remove.fail", err, map[string]any{"phone": in.PhoneID})
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update your cart")
	}
	applog.Audit(c, "cart.remove", map[string]any{"phone": in.PhoneID, "color": in.Color, "storage": in.Storage})
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sess, err := h.Sessions.Open(c.UserContext(), ensureSID(c))
	if err != nil {
		applog.Error(c, "cart.load.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not load your cart")
	}
	if err := sess.Clear(c.UserContext()); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update your cart")
	}
	applog.Audit(c, "cart.clear", nil)
	return c.Redirect("/cart")
}
