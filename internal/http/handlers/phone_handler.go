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

type PhoneHandler struct {
	Catalog  *services.CatalogService
	Sessions *services.SessionService
}

// cartCount is best-effort: a store failure shows an empty badge.
func (h *PhoneHandler) cartCount(c *fiber.Ctx) int {
	sess, err := h.Sessions.Open(c.UserContext(), ensureSID(c))
	if err != nil {
		log.Error(c, "cart.load.fail", err, nil)
		return 0
	}
	return sess.ItemCount()
}

func (h *PhoneHandler) List(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	var (
		phones []domain.Phone
		err    error
		q      string
	)
	if strings.TrimSpace(rawQ) == "" {
		phones, err = h.Catalog.List(c.UserContext())
	} else {
		var ok bool
		q, ok = validate.Q(rawQ)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return c.Status(fiber.StatusBadRequest).Render("phones", fiber.Map{
				"Q": "", "Phones": []domain.Phone{}, "Count": 0,
				"Err": "Enter a valid keyword (letters/numbers only)",
			})
		}
		phones, err = h.Catalog.Search(c.UserContext(), q)
	}
	if err != nil {
		log.Error(c, "catalog.list.error", err, map[string]any{"q": q})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load phones. Please retry."})
	}

	return render(c, "phones", fiber.Map{
		"Q": q, "Phones": phones, "Count": len(phones), "CartCount": h.cartCount(c),
	})
}

func (h *PhoneHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "phone"})
		return notFound(c, "This phone is no longer available")
	}
	p, err := h.Catalog.Get(c.UserContext(), id)
	if errors.Is(err, domain.ErrPhoneNotFound) {
		return notFound(c, "This phone is no longer available")
	}
	if err != nil {
		log.Error(c, "catalog.get.error", err, map[string]any{"phone": id})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load this phone. Please retry."})
	}
	similar, err := h.Catalog.SimilarTo(c.UserContext(), p)
	if err != nil {
		log.Error(c, "catalog.similar.error", err, map[string]any{"phone": id})
		similar = nil
	}
	return render(c, "phone", fiber.Map{
		"P": p, "Similar": similar, "CartCount": h.cartCount(c),
	})
}
