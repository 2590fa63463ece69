package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("tickets")

		collection.Fields.Add(
			&core.RelationField{
				Name:          "event_id",
				Required:      true,
				CollectionId:  events.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			},
			&core.TextField{
				Name: "ticket_type",
			},
			&core.NumberField{
				Name: "price",
				Min:  types.Pointer(0.0),
			},
			&core.NumberField{
				Name:    "quantity",
				Min:     types.Pointer(0.0),
				OnlyInt: true,
			},
			&core.AutodateField{
				// Marks sale-window start for demand estimation.
				Name:     "created",
				OnCreate: true,
			},
			&core.AutodateField{
				Name:     "updated",
				OnCreate: true,
				OnUpdate: true,
			},
		)

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
