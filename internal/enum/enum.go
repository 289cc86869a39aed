package enum

// ── Fulfillment pipeline (CHECK constrained in DB) ──
//
// Orders move through these states one step at a time, forward or backward.
// Delivered is terminal going forward; Pending is only reachable backward
// from Preparing.

const (
	OrderStatePending   = "Pending"
	OrderStatePreparing = "Preparing"
	OrderStateDelivered = "Delivered"
)

// ── Actors ──

const (
	ActorUser       = "USER"
	ActorRestaurant = "RESTAURANT"
)

// ── Configurable labels (no DB constraint) ──

const (
	CuisineItalian    = "Italiana"
	CuisineMexican    = "Mexicana"
	CuisineChinese    = "China"
	CuisineJapanese   = "Japonesa"
	CuisineVegetarian = "Vegetariana"
	CuisinePizza      = "Pizzas"
	CuisineBurgers    = "Hamburguesas"
	CuisineDesserts   = "Postres"
)
