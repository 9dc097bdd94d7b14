package lifecycle_test

import (
	"testing"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/lifecycle"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStatus(t *testing.T) {
	cases := []struct {
		doc    lifecycle.Document
		status string
		ok     bool
	}{
		{lifecycle.DocQuotation, "draft", true},
		{lifecycle.DocQuotation, "expired", true},
		{lifecycle.DocQuotation, "signed", false},
		{lifecycle.DocContract, "signed", true},
		{lifecycle.DocContract, "cancelled", true},
		{lifecycle.DocContract, "pending", false},
		{lifecycle.DocInstallation, "pending", true},
		{lifecycle.DocInstallation, "completed", true},
		{lifecycle.DocInstallation, "draft", false},
		{lifecycle.DocInstallation, "", false},
	}
	for _, tc := range cases {
		err := lifecycle.ValidateStatus(tc.doc, tc.status)
		if tc.ok {
			assert.NoError(t, err, "%s/%s", tc.doc, tc.status)
		} else {
			assert.True(t, apierror.Is(err, apierror.KindValidation), "%s/%s", tc.doc, tc.status)
		}
	}
}

func TestStatusOrDefault(t *testing.T) {
	s, err := lifecycle.StatusOrDefault(lifecycle.DocQuotation, "")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.QuotationDraft, s)

	s, err = lifecycle.StatusOrDefault(lifecycle.DocInstallation, "")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.InstallationPending, s)

	_, err = lifecycle.StatusOrDefault(lifecycle.DocContract, "approved")
	assert.Error(t, err)
}

func TestStatuses_ReturnsCopy(t *testing.T) {
	s := lifecycle.Statuses(lifecycle.DocContract)
	s[0] = "mutated"
	assert.Equal(t, lifecycle.ContractDraft, lifecycle.DefaultStatus(lifecycle.DocContract))
}

func TestKeepLineage(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	got, err := lifecycle.KeepLineage("quotation_id", &a, nil)
	require.NoError(t, err)
	assert.Equal(t, &a, got)

	got, err = lifecycle.KeepLineage("quotation_id", &a, &a)
	require.NoError(t, err)
	assert.Equal(t, a, *got)

	_, err = lifecycle.KeepLineage("quotation_id", &a, &b)
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	// attaching lineage after creation is also a change
	_, err = lifecycle.KeepLineage("quotation_id", nil, &b)
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	got, err = lifecycle.KeepLineage("quotation_id", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestValidateKind(t *testing.T) {
	assert.NoError(t, lifecycle.ValidateKind("installation"))
	assert.NoError(t, lifecycle.ValidateKind("service_visit"))
	assert.Error(t, lifecycle.ValidateKind("repair"))
}
