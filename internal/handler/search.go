package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"searchq/internal/logger"
	"searchq/internal/schema"
	"searchq/internal/search"
	"searchq/internal/sqlquery"
)

var (
	resolver     *schema.NameResolver
	mappers      = map[string]*schema.FieldMapper{}
	restrictions = map[string]*search.FieldRestrictions{}
	defaultTake  int
	maxTake      int
)

// Configure builds the per-entity mappers. Runs once at startup, after the
// registry is initialized. Requests without paging get defaultPageSize rows;
// requested takes clamp to takeLimit.
func Configure(policy schema.NamingPolicy, useAliases bool, defaultPageSize, takeLimit int) {
	resolver = schema.NewNameResolver(policy, useAliases)
	defaultTake = defaultPageSize
	maxTake = takeLimit
	for name, entity := range schema.Registry {
		mappers[name] = schema.NewFieldMapper(entity, resolver)
	}
}

// SetMapper overrides the default mapper for one entity, e.g. to add
// custom DTO mappings or value transformers.
func SetMapper(entity string, m *schema.FieldMapper) {
	mappers[entity] = m
}

// SetRestrictions installs the allow/block policy for one entity.
func SetRestrictions(entity string, r *search.FieldRestrictions) {
	restrictions[entity] = r
}

// SearchHandler serves GET /api/search. The query string carries the flat
// wire dictionary plus the target entity name.
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		logger.Warn("method_not_allowed", map[string]any{
			"endpoint": "/api/search",
			"method":   r.Method,
		})
		http.Error(w, "Only GET allowed", http.StatusMethodNotAllowed)
		return
	}

	entity, mapper, sp, ok := parseRequest(w, r, "/api/search")
	if !ok {
		return
	}

	countQuery, pagedQuery := sp.Apply(sqlquery.For(entity), entity, mapper, restrictions[entity.Name])
	result, err := sqlquery.Materialize(r.Context(), countQuery, pagedQuery)
	if err != nil {
		logger.Error("materialize_error", map[string]any{
			"endpoint": "/api/search",
			"entity":   entity.Name,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to execute search", http.StatusInternalServerError)
		return
	}
	writeJSON(w, "/api/search", result)
}

// CountHandler serves GET /api/count: the same pipeline, count only.
func CountHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		logger.Warn("method_not_allowed", map[string]any{
			"endpoint": "/api/count",
			"method":   r.Method,
		})
		http.Error(w, "Only GET allowed", http.StatusMethodNotAllowed)
		return
	}

	entity, mapper, sp, ok := parseRequest(w, r, "/api/count")
	if !ok {
		return
	}

	countQuery, _ := sp.Apply(sqlquery.For(entity), entity, mapper, restrictions[entity.Name])
	total, err := sqlquery.MaterializeCount(r.Context(), countQuery)
	if err != nil {
		logger.Error("materialize_error", map[string]any{
			"endpoint": "/api/count",
			"entity":   entity.Name,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to execute count", http.StatusInternalServerError)
		return
	}
	writeJSON(w, "/api/count", map[string]any{"total_count": total})
}

func parseRequest(w http.ResponseWriter, r *http.Request, endpoint string) (*schema.Entity, *schema.FieldMapper, *search.SearchParameters, bool) {
	query := r.URL.Query()
	entityName := query.Get("entity")
	entity := schema.GetEntity(entityName)
	if entity == nil {
		logger.Warn("unknown_entity", map[string]any{
			"endpoint": endpoint,
			"entity":   entityName,
		})
		http.Error(w, "Unknown entity: "+entityName, http.StatusBadRequest)
		return nil, nil, nil, false
	}
	mapper, ok := mappers[entity.Name]
	if !ok {
		http.Error(w, "Entity not configured: "+entityName, http.StatusInternalServerError)
		return nil, nil, nil, false
	}

	sp, err := search.FromDictionary(flatten(query))
	if err != nil {
		logger.Warn("invalid_search_dictionary", map[string]any{
			"endpoint": endpoint,
			"entity":   entityName,
			"error":    err.Error(),
		})
		http.Error(w, "Invalid search parameters: "+err.Error(), http.StatusBadRequest)
		return nil, nil, nil, false
	}
	if sp.Paging == nil && defaultTake > 0 {
		sp.Paging = &search.Paging{Take: defaultTake}
	}
	if sp.Paging != nil && maxTake > 0 && sp.Paging.Take > maxTake {
		sp.Paging.Take = maxTake
	}
	return entity, mapper, sp, true
}

// flatten keeps the first value per key, matching the flat-dictionary
// wire contract.
func flatten(values url.Values) map[string]string {
	dict := make(map[string]string, len(values))
	for key, vals := range values {
		if key == "entity" || len(vals) == 0 {
			continue
		}
		dict[key] = vals[0]
	}
	return dict
}

func writeJSON(w http.ResponseWriter, endpoint string, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write_response_failed", map[string]any{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// FieldsHandler serves GET /api/fields: the DTO-visible field names of an
// entity, for client introspection.
func FieldsHandler(w http.ResponseWriter, r *http.Request) {
	entityName := r.URL.Query().Get("entity")
	mapper, ok := mappers[entityName]
	if !ok {
		http.Error(w, "Unknown entity: "+entityName, http.StatusBadRequest)
		return
	}
	writeJSON(w, "/api/fields", map[string]any{
		"entity": entityName,
		"fields": mapper.MappedFields(),
	})
}
