package unchained

import (
	"fmt"
	"strings"

	"github.com/robgibbons/express-unchained/internal/compose"
	"github.com/robgibbons/express-unchained/models"
)

// BuildTable converts declarative route mappings into a URLTable by
// resolving view and middleware names against the registry. Any unknown
// name or contradictory mapping is a configuration error; nothing is
// built partially.
func BuildTable(mappings []models.RouteMapping, registry models.Registry) (*models.URLTable, error) {
	table := models.NewURLTable()

	for _, mapping := range mappings {
		if mapping.Path == "" {
			return nil, fmt.Errorf("route mapping has an empty path")
		}

		view, err := buildView(mapping, registry)
		if err != nil {
			return nil, err
		}

		if len(mapping.Middleware) > 0 {
			chain := make([]models.Middleware, 0, len(mapping.Middleware))
			for _, name := range mapping.Middleware {
				mw, ok := registry.Middleware(name)
				if !ok {
					return nil, fmt.Errorf("route mapping %q: unknown middleware %q", mapping.Path, name)
				}
				chain = append(chain, mw)
			}
			view = models.Wrap(view, chain...)
		}

		table.Route(mapping.Path, view)
	}

	return table, nil
}

func buildView(mapping models.RouteMapping, registry models.Registry) (models.View, error) {
	switch {
	case mapping.View != "" && len(mapping.Methods) > 0:
		return nil, fmt.Errorf("route mapping %q: 'view' and 'methods' are mutually exclusive", mapping.Path)

	case mapping.View != "":
		view, ok := registry.View(mapping.View)
		if !ok {
			return nil, fmt.Errorf("route mapping %q: unknown view %q", mapping.Path, mapping.View)
		}
		return view, nil

	case len(mapping.Methods) > 0:
		// Map iteration order is random; walk the supported methods so the
		// built table is deterministic.
		entries := make([]models.MethodEntry, 0, len(mapping.Methods))
		matched := 0
		for _, method := range compose.SupportedMethods {
			name, ok := lookupMethod(mapping.Methods, method)
			if !ok {
				continue
			}
			matched++
			view, found := registry.View(name)
			if !found {
				return nil, fmt.Errorf("route mapping %q: unknown view %q for method %s", mapping.Path, name, method)
			}
			entries = append(entries, models.Method(method, view))
		}
		if matched != len(mapping.Methods) {
			return nil, fmt.Errorf("route mapping %q: unknown HTTP method in methods table", mapping.Path)
		}
		return models.Methods(entries...), nil

	default:
		return nil, fmt.Errorf("route mapping %q: no view declared", mapping.Path)
	}
}

func lookupMethod(methods map[string]string, method string) (string, bool) {
	for key, name := range methods {
		if strings.EqualFold(key, method) {
			return name, true
		}
	}
	return "", false
}
