package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"catalogue-adapter/internal/ckan"
	"catalogue-adapter/pkg/models"
)

// Annotation keys for the consent/provenance fields, which have no column in
// the backend's primary record schema.
const (
	annotationTermsAndConditions = "terms_and_conditions"
	annotationDataAgreement      = "data_agreement"
	annotationCaptureInfo        = "capture_info"
)

// annotateRecord applies the fixed annotation set to a record, falling back
// to an annotation update when create fails with a duplicate key (which
// happens on every record update). Residual failures are returned as
// warnings, never as errors: the primary record fields are already saved,
// only this best-effort side-channel data may be degraded.
func (a *Adapter) annotateRecord(ctx context.Context, recordID string, record models.MetadataRecordIn, token string) []string {
	var warnings []string

	annotate := func(key string, value map[string]any) {
		encoded, err := json.Marshal(value)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"error serializing %q annotation for metadata record %s: %v", key, recordID, err))
			return
		}
		params := ckan.Params{
			"id":    recordID,
			"key":   key,
			"value": string(encoded),
		}
		err = withFallback(
			func() error {
				_, err := a.ckan.Invoke(ctx, actionAnnotationCreate, token, params)
				return err
			},
			func(err error) bool {
				// a duplicate annotation key surfaces as a validation error
				return ckan.IsKind(err, ckan.KindBadRequest)
			},
			func() error {
				_, err := a.ckan.Invoke(ctx, actionAnnotationUpdate, token, params)
				return err
			},
		)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"error setting %q annotation on metadata record %s: %s", key, recordID, ckan.MessageOf(err)))
		}
	}

	annotate(annotationTermsAndConditions, map[string]any{
		"accepted": record.TermsConditionsAccepted,
	})

	dataAgreement := map[string]any{"accepted": record.DataAgreementAccepted}
	if record.DataAgreementURL != "" {
		dataAgreement["href"] = record.DataAgreementURL
	}
	annotate(annotationDataAgreement, dataAgreement)

	annotate(annotationCaptureInfo, map[string]any{
		"capture_method": record.CaptureMethod,
	})

	return warnings
}
