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
		tickets, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("transactions")

		collection.Fields.Add(
			&core.RelationField{
				Name:          "event_id",
				Required:      true,
				CollectionId:  events.Id,
				CascadeDelete: false,
				MaxSelect:     1,
			},
			&core.RelationField{
				Name:          "ticket_id",
				Required:      true,
				CollectionId:  tickets.Id,
				CascadeDelete: false,
				MaxSelect:     1,
			},
			&core.NumberField{
				Name:    "quantity",
				Min:     types.Pointer(1.0),
				OnlyInt: true,
			},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"pending", "completed", "failed"},
			},
			&core.AutodateField{
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
		collection, err := app.FindCollectionByNameOrId("transactions")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
