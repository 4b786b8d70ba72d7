package servicemapping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/kyc"
	"github.com/servicechain/executor/services/servicemapping"
	"github.com/servicechain/executor/services/timestamp"
	"github.com/servicechain/executor/services/transferquota"
)

func TestNewDefault(t *testing.T) {
	r := servicemapping.NewDefault()
	require.NoError(t, r.Validate())

	assert.Equal(t, []string{
		"metadata",
		"kyc",
		"timestamp",
		"multi_signature",
		"transfer_quota",
		"asset",
		"governance",
		"admission_control",
		"authorization",
		"vm",
	}, r.ListServiceName())

	registration, ok := r.Registration(asset.ServiceName)
	require.True(t, ok)
	assert.Equal(t, []string{transferquota.ServiceName}, registration.Dependencies)
}

func TestNew(t *testing.T) {
	// the table order wins over the argument order
	r := servicemapping.New(transferquota.ServiceName, timestamp.ServiceName, kyc.ServiceName)
	require.NoError(t, r.Validate())
	assert.Equal(t, []string{kyc.ServiceName, timestamp.ServiceName, transferquota.ServiceName}, r.ListServiceName())

	// asset depends on transfer_quota
	r = servicemapping.New(asset.ServiceName)
	assert.Error(t, r.Validate())

	assert.Empty(t, servicemapping.New().ListServiceName())
}
