package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/middleware"
	api "bikepulse/pkg/contracts/api/v1"
	"bikepulse/pkg/contracts/domain"
)

// Query keys holding set-valued selection constraints
const (
	paramSeason     = "season"
	paramWorkingDay = "workingday"
	paramFeatures   = "features"
)

// decodeQuery decodes query parameters into out. Scalars are weakly typed from
// their first non-empty value; listKeys keep every value, comma separated or repeated.
func decodeQuery(values url.Values, out interface{}, listKeys ...string) error {
	lists := make(map[string]bool, len(listKeys))
	for _, k := range listKeys {
		lists[k] = true
	}

	input := make(map[string]interface{}, len(values))
	for key, vals := range values {
		if lists[key] {
			if list := listParam(values, key); list != nil {
				input[key] = list
			}
			continue
		}
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				input[key] = v
				break
			}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to create query decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid query parameter", err.Error())
	}
	return nil
}

// listParam returns the values of key split on commas. A key that is absent
// yields nil; a key given with no values yields an empty, non-nil list.
func listParam(values url.Values, key string) []string {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// bindSelection decodes req from the query, fills the set-valued constraints of
// sel, validates req and converts sel to a domain selection.
func bindSelection(v *validator.Validate, values url.Values, req interface{}, sel *api.SelectionRequest) (domain.FilterSelection, error) {
	if err := decodeQuery(values, req, paramFeatures); err != nil {
		return domain.FilterSelection{}, err
	}
	sel.Seasons = listParam(values, paramSeason)
	sel.WorkingDays = listParam(values, paramWorkingDay)

	return validateSelection(v, req, sel)
}

// validateSelection validates req and converts sel to a domain selection.
func validateSelection(v *validator.Validate, req interface{}, sel *api.SelectionRequest) (domain.FilterSelection, error) {
	if err := middleware.ValidateStruct(v, req); err != nil {
		return domain.FilterSelection{}, err
	}
	if sel.Start != "" && sel.End != "" && sel.End < sel.Start {
		return domain.FilterSelection{}, apierrors.ErrValidation("end", "end must not be before start")
	}
	return sel.ToSelection()
}
