package handlers

import (
	"phonestore/internal/config"
	"phonestore/internal/repos"
	"phonestore/internal/services"
)

type Deps struct {
	PhoneHandler *PhoneHandler
	CartHandler  *CartHandler
	APIHandler   *APIHandler
}

// NewDeps wires handlers to a catalog provider and the cart store.
func NewDeps(phones services.PhoneProvider, store repos.KV, cfg config.Config) *Deps {
	catalogSvc := services.NewCatalogService(phones)
	sessionSvc := services.NewSessionService(store, cfg.CartKey)

	return &Deps{
		PhoneHandler: &PhoneHandler{Catalog: catalogSvc, Sessions: sessionSvc},
		CartHandler:  &CartHandler{Catalog: catalogSvc, Sessions: sessionSvc},
		APIHandler:   &APIHandler{Catalog: catalogSvc, Sessions: sessionSvc},
	}
}
