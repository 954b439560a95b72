package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON, app.rejectBadSession)

	mux := pat.New()

	mux.Get("/health", standardMiddleware.ThenFunc(app.healthHandler.Health))

	// Requests
	mux.Get("/requests", standardMiddleware.ThenFunc(app.requestHandler.ListRequests))
	mux.Get("/requests/active", standardMiddleware.ThenFunc(app.requestHandler.ListActiveRequests))
	mux.Get("/requests/:id", standardMiddleware.ThenFunc(app.requestHandler.GetRequest))
	mux.Post("/requests", standardMiddleware.ThenFunc(app.requestHandler.CreateRequest))
	mux.Post("/requests/:id/services", standardMiddleware.ThenFunc(app.requestHandler.AddServices))
	mux.Post("/requests/:id/publish", standardMiddleware.ThenFunc(app.requestHandler.PublishRequest))
	mux.Del("/requests/:id", standardMiddleware.ThenFunc(app.requestHandler.CancelRequest))
	mux.Post("/requests/:id/select-offer", standardMiddleware.ThenFunc(app.requestHandler.SelectOffer))

	// Cart
	mux.Get("/cart", standardMiddleware.ThenFunc(app.cartHandler.GetCart))
	mux.Post("/cart", standardMiddleware.ThenFunc(app.cartHandler.AddToCart))
	mux.Get("/cart/contains", standardMiddleware.ThenFunc(app.cartHandler.IsServiceInCart))
	mux.Get("/cart/total/:vehicle_id", standardMiddleware.ThenFunc(app.cartHandler.TotalByVehicle))
	mux.Put("/cart/:id", standardMiddleware.ThenFunc(app.cartHandler.UpdateCartItem))
	mux.Del("/cart/:id", standardMiddleware.ThenFunc(app.cartHandler.RemoveCartItem))
	mux.Del("/cart", standardMiddleware.ThenFunc(app.cartHandler.ClearCart))

	// Settlement
	mux.Post("/settlement", standardMiddleware.ThenFunc(app.settlementHandler.Preview))

	// Realtime
	mux.Get("/events/ws", http.HandlerFunc(app.RelayWSHandler))
	mux.Get("/events/new-offers", standardMiddleware.ThenFunc(app.eventsHandler.NewOffers))
	mux.Get("/events/new-offers/:request_id", standardMiddleware.ThenFunc(app.eventsHandler.NewOffersForRequest))
	mux.Del("/events/new-offers/:request_id", standardMiddleware.ThenFunc(app.eventsHandler.ClearNewOffers))

	return mux
}
