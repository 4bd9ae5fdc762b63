package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the dashboard service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	transactionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Transaction",
		Fields: graphql.Fields{
			"year":                   &graphql.Field{Type: graphql.Int},
			"property_type":          &graphql.Field{Type: graphql.String},
			"street_number":          &graphql.Field{Type: graphql.Int},
			"street_type":            &graphql.Field{Type: graphql.String},
			"street_name":            &graphql.Field{Type: graphql.String},
			"city":                   &graphql.Field{Type: graphql.String},
			"postal_code":            &graphql.Field{Type: graphql.String},
			"country":                &graphql.Field{Type: graphql.String},
			"location":               &graphql.Field{Type: geoPointType},
			"built_surface_area":     &graphql.Field{Type: graphql.Float},
			"property_value":         &graphql.Field{Type: graphql.Float},
			"price_per_square_meter": &graphql.Field{Type: graphql.Float},
		},
	})

	snapshotType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Snapshot",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"source":       &graphql.Field{Type: graphql.String},
			"raw_rows":     &graphql.Field{Type: graphql.Int},
			"dropped_rows": &graphql.Field{Type: graphql.Int},
			"loaded_at":    &graphql.Field{Type: graphql.DateTime},
			"rows": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, _ := p.Source.(*domain.Snapshot)
					return snap.Rows(), nil
				},
			},
		},
	})

	countType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TypeCount",
		Fields: graphql.Fields{
			"year":          &graphql.Field{Type: graphql.Int},
			"property_type": &graphql.Field{Type: graphql.String},
			"count":         &graphql.Field{Type: graphql.Int},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "YearStats",
		Fields: graphql.Fields{
			"year":   &graphql.Field{Type: graphql.Int},
			"q1":     &graphql.Field{Type: graphql.Float},
			"median": &graphql.Field{Type: graphql.Float},
			"q3":     &graphql.Field{Type: graphql.Float},
			"mean":   &graphql.Field{Type: graphql.Float},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FiveNumberSummary",
		Fields: graphql.Fields{
			"min":    &graphql.Field{Type: graphql.Float},
			"q1":     &graphql.Field{Type: graphql.Float},
			"median": &graphql.Field{Type: graphql.Float},
			"q3":     &graphql.Field{Type: graphql.Float},
			"max":    &graphql.Field{Type: graphql.Float},
			"count":  &graphql.Field{Type: graphql.Int},
		},
	})

	distributionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Distribution",
		Fields: graphql.Fields{
			"year":          &graphql.Field{Type: graphql.Int},
			"property_type": &graphql.Field{Type: graphql.String},
			"measure":       &graphql.Field{Type: graphql.String},
			"summary":       &graphql.Field{Type: summaryType},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapMarker",
		Fields: graphql.Fields{
			"lat":          &graphql.Field{Type: graphql.Float},
			"lon":          &graphql.Field{Type: graphql.Float},
			"popup_text":   &graphql.Field{Type: graphql.String},
			"tooltip_text": &graphql.Field{Type: graphql.String},
			"distance_m":   &graphql.Field{Type: graphql.Float},
		},
	})

	heatPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "HeatPoint",
		Fields: graphql.Fields{
			"lat":    &graphql.Field{Type: graphql.Float},
			"lon":    &graphql.Field{Type: graphql.Float},
			"weight": &graphql.Field{Type: graphql.Float},
		},
	})

	heatLayerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "HeatLayer",
		Fields: graphql.Fields{
			"points":      &graphql.Field{Type: graphql.NewList(heatPointType)},
			"max_weight":  &graphql.Field{Type: graphql.Float},
			"min_opacity": &graphql.Field{Type: graphql.Float},
			"radius":      &graphql.Field{Type: graphql.Int},
			"blur":        &graphql.Field{Type: graphql.Int},
			"max_zoom":    &graphql.Field{Type: graphql.Int},
		},
	})

	mapViewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapView",
		Fields: graphql.Fields{
			"center":    &graphql.Field{Type: geoPointType},
			"zoom":      &graphql.Field{Type: graphql.Int},
			"highlight": &graphql.Field{Type: markerType},
		},
	})

	tableType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TablePreview",
		Fields: graphql.Fields{
			"rows":       &graphql.Field{Type: graphql.NewList(transactionType)},
			"limit":      &graphql.Field{Type: graphql.Int},
			"total_rows": &graphql.Field{Type: graphql.Int},
			"columns":    &graphql.Field{Type: graphql.Int},
		},
	})

	dashboardType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Dashboard",
		Fields: graphql.Fields{
			"snapshot":      &graphql.Field{Type: snapshotType},
			"map":           &graphql.Field{Type: mapViewType},
			"markers":       &graphql.Field{Type: graphql.NewList(markerType)},
			"heat":          &graphql.Field{Type: heatLayerType},
			"table":         &graphql.Field{Type: tableType},
			"counts":        &graphql.Field{Type: graphql.NewList(countType)},
			"stats":         &graphql.Field{Type: graphql.NewList(statsType)},
			"distributions": &graphql.Field{Type: graphql.NewList(distributionType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"dashboard": &graphql.Field{
				Type:        dashboardType,
				Description: "Render the dashboard for a filter selection",
				Args: graphql.FieldConfigArgument{
					"years": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.Int)},
					"types": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"lat":   &graphql.ArgumentConfig{Type: graphql.Float},
					"lon":   &graphql.ArgumentConfig{Type: graphql.Float},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f, err := filtersFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					return deps.Dashboard.Render(p.Context, f)
				},
			},
			"stats": &graphql.Field{
				Type:        graphql.NewList(statsType),
				Description: "Price per m² quantiles per year over the full dataset",
				Args: graphql.FieldConfigArgument{
					"years": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					years, err := intList(p.Args, "years")
					if err != nil {
						return nil, err
					}
					return deps.Dashboard.Stats(p.Context, years)
				},
			},
			"counts": &graphql.Field{
				Type:        graphql.NewList(countType),
				Description: "Transaction counts per year and property type",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Dashboard.Counts(p.Context)
				},
			},
			"dataset": &graphql.Field{
				Type:        snapshotType,
				Description: "The loaded dataset snapshot",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Dashboard.Snapshot(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// filtersFromArgs mirrors parseFilters: omitted lists select everything.
func filtersFromArgs(args map[string]interface{}) (domain.Filters, error) {
	var f domain.Filters

	years, err := intList(args, "years")
	if err != nil {
		return f, err
	}
	f.Years = years

	if raw, ok := args["types"].([]interface{}); ok {
		f.PropertyTypes = []domain.PropertyType{}
		for _, v := range raw {
			s, _ := v.(string)
			pt, ok := domain.ParsePropertyType(s)
			if !ok {
				return f, fmt.Errorf("%w: unknown property type %q", domain.ErrInvalidFilter, s)
			}
			f.PropertyTypes = append(f.PropertyTypes, pt)
		}
	}

	lat, hasLat := args["lat"].(float64)
	lon, hasLon := args["lon"].(float64)
	if hasLat != hasLon {
		return f, fmt.Errorf("%w: lat and lon go together", domain.ErrInvalidFilter)
	}
	f.PointOfInterest = domain.GeoPoint{Lat: lat, Lon: lon}

	if limit, ok := args["limit"].(int); ok {
		if limit < 1 || limit > maxPreviewLimit {
			return f, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidFilter, maxPreviewLimit)
		}
		f.PreviewLimit = limit
	}
	return f, nil
}

func intList(args map[string]interface{}, key string) ([]int, error) {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil, nil
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be integers", domain.ErrInvalidFilter, key)
		}
		out = append(out, n)
	}
	return out, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
