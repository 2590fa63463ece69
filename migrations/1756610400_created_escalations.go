package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
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

		collection := core.NewBaseCollection("escalations")

		collection.Fields.Add(
			&core.RelationField{
				Name:          "event_id",
				Required:      true,
				CollectionId:  events.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			},
			&core.RelationField{
				// Set only for pricing recommendations.
				Name:          "ticket_id",
				CollectionId:  tickets.Id,
				CascadeDelete: false,
				MaxSelect:     1,
			},
			&core.TextField{
				Name:     "issue_summary",
				Required: true,
			},
			&core.SelectField{
				Name:      "priority",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"Low", "Medium", "Severe", "recommendation"},
			},
			&core.TextField{
				Name: "user_name",
			},
			&core.TextField{
				Name: "user_contact",
			},
			&core.TextField{
				Name: "ref_code",
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
		collection, err := app.FindCollectionByNameOrId("escalations")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
