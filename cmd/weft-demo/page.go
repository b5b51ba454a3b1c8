package main

import (
	"github.com/google/uuid"

	"github.com/weft-dev/weft"
	. "github.com/weft-dev/weft/el"
	"github.com/weft-dev/weft/internal/config"
	"github.com/weft-dev/weft/pkg/product"
	"github.com/weft-dev/weft/pkg/server"
	"github.com/weft-dev/weft/pkg/uploader"
)

// registerPages mounts the demo catalog on the app.
func registerPages(app *weft.App, cfg *config.Config) {
	client := product.NewClient(cfg.ProductAPI)
	app.Page("/", func(ctx server.Ctx) Component {
		return catalogPage(ctx, app, client)
	})
}

// catalogPage builds one session's page: a demo product with the
// uploader widget, plus admin controls driving the widget's
// imperative handle.
func catalogPage(ctx server.Ctx, app *weft.App, client *product.Client) Component {
	prod := &product.Product{
		ID:   uuid.NewString(),
		Name: "Walnut Chair No. 4",
		Fields: map[string]any{
			"sku":   "WC-004",
			"price": "249.00",
		},
	}

	widget := uploader.New(uploader.Config{
		Product: prod,
		Client:  client,
		Store:   app.Store(),
		Logger:  ctx.Logger(),
	})

	return Func(func() *VNode {
		return Div(Class("catalog"),
			Header(
				H1(Text("Product catalog")),
				P(Class("subtitle"), Text("Weft uploader demo")),
			),
			Section(Class("product-card"),
				H2(Text(prod.Name)),
				P(Class("product-id"), Text("ID: "+prod.ID)),
				widget.Render(),
			),
			Section(Class("admin-controls"),
				H2(Text("Admin")),
				P(Text("Toggle whether this product accepts image uploads.")),
				Button(OnClick(widget.Enable), Text("Enable uploads")),
				Button(OnClick(widget.Disable), Text("Disable uploads")),
			),
		)
	})
}
