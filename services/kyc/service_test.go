package kyc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/kyc"
	"github.com/servicechain/executor/utils/unittest"
)

type kycSuite struct {
	*unittest.ExecutionHarness
	t *testing.T

	admin types.Address
}

func newKycSuite(t *testing.T) *kycSuite {
	admin := unittest.AddressFixture()
	return &kycSuite{
		ExecutionHarness: unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, admin, 1_000_000), nil),
		t:                t,
		admin:            admin,
	}
}

func (s *kycSuite) exec(sender types.Address, method string, payload interface{}) types.Receipt {
	resp := s.ExecBlock(s.Tx(sender, kyc.ServiceName, method, payload))
	require.Len(s.t, resp.Receipts, 1)
	return resp.Receipts[0]
}

func (s *kycSuite) fund(user types.Address) {
	resp := s.ExecBlock(s.Tx(s.admin, asset.ServiceName, "transfer", asset.TransferPayload{
		AssetID: unittest.NativeAssetID,
		To:      user,
		Value:   10_000,
	}))
	unittest.RequireSuccess(s.t, resp)
}

func (s *kycSuite) eval(user types.Address, expression string) types.ServiceResponse {
	return s.Read(user, kyc.ServiceName, "eval_user_tag_expression", kyc.EvalUserTagExpressionPayload{
		User:       user,
		Expression: expression,
	})
}

func (s *kycSuite) evalResult(user types.Address, expression string) bool {
	response := s.eval(user, expression)
	require.False(s.t, response.IsError(), response.String())

	var result kyc.EvalUserTagExpressionResponse
	require.NoError(s.t, common.DecodeResponse(response, &result))
	return result.Result
}

func TestKyc_Genesis(t *testing.T) {
	s := newKycSuite(t)

	var orgs []string
	s.ReadInto(s.admin, kyc.ServiceName, "get_orgs", "", &orgs)
	assert.Equal(t, []string{unittest.KycOrgName}, orgs)

	var org kyc.Organization
	s.ReadInto(s.admin, kyc.ServiceName, "get_org_info", kyc.GetOrgInfoPayload{Name: unittest.KycOrgName}, &org)
	assert.Equal(t, s.admin, org.Admin)
	assert.Equal(t, []string{"country", "level"}, org.SupportedTags)
}

func TestKyc_RegisterOrg(t *testing.T) {
	s := newKycSuite(t)
	orgAdmin := unittest.AddressFixture()
	s.fund(orgAdmin)

	register := kyc.RegisterOrgPayload{
		Name:          "Bank",
		Description:   "a bank",
		Admin:         orgAdmin,
		SupportedTags: []string{"vip"},
	}

	receipt := s.exec(orgAdmin, "register_org", register)
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodePermissionDenied, receipt.Response.Code)

	receipt = s.exec(s.admin, "register_org", register)
	require.False(t, receipt.Failed(), receipt.Response.String())

	receipt = s.exec(s.admin, "register_org", register)
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodeAlreadyExists, receipt.Response.Code)

	var orgs []string
	s.ReadInto(s.admin, kyc.ServiceName, "get_orgs", "", &orgs)
	assert.Equal(t, []string{unittest.KycOrgName, "Bank"}, orgs)

	// the org admin manages the tags, the service admin does not
	receipt = s.exec(s.admin, "update_supported_tags", kyc.UpdateSupportedTagsPayload{
		OrgName:       "Bank",
		SupportedTags: []string{"vip", "risk"},
	})
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodePermissionDenied, receipt.Response.Code)

	receipt = s.exec(orgAdmin, "update_supported_tags", kyc.UpdateSupportedTagsPayload{
		OrgName:       "Bank",
		SupportedTags: []string{"vip", "risk"},
	})
	require.False(t, receipt.Failed(), receipt.Response.String())

	var org kyc.Organization
	s.ReadInto(s.admin, kyc.ServiceName, "get_org_info", kyc.GetOrgInfoPayload{Name: "Bank"}, &org)
	assert.Equal(t, []string{"risk", "vip"}, org.SupportedTags)
}

func TestKyc_UserTags(t *testing.T) {
	s := newKycSuite(t)
	user := unittest.AddressFixture()

	receipt := s.exec(s.admin, "update_user_tags", kyc.UpdateUserTagsPayload{
		OrgName: unittest.KycOrgName,
		User:    user,
		Tags:    kyc.UserTags{"unsupported": {"A"}},
	})
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodeInvalidArgument, receipt.Response.Code)

	receipt = s.exec(s.admin, "update_user_tags", kyc.UpdateUserTagsPayload{
		OrgName: unittest.KycOrgName,
		User:    user,
		Tags:    kyc.UserTags{"level": {kyc.NullValue}},
	})
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodeInvalidArgument, receipt.Response.Code)

	receipt = s.exec(s.admin, "update_user_tags", kyc.UpdateUserTagsPayload{
		OrgName: unittest.KycOrgName,
		User:    user,
		Tags:    kyc.UserTags{"level": {"B", "A", "A"}},
	})
	require.False(t, receipt.Failed(), receipt.Response.String())

	var tags kyc.UserTags
	s.ReadInto(user, kyc.ServiceName, "get_user_tags", kyc.GetUserTagsPayload{
		OrgName: unittest.KycOrgName,
		User:    user,
	}, &tags)
	assert.Equal(t, kyc.UserTags{"level": {"A", "B"}}, tags)

	assert.True(t, s.evalResult(user, "Huobi.level@A"))
	assert.True(t, s.evalResult(user, "Huobi.level@B && Huobi.country@NULL"))
	assert.False(t, s.evalResult(user, "Huobi.level@C || Huobi.country@CN"))
	assert.False(t, s.evalResult(unittest.AddressFixture(), "Huobi.level@A"))

	response := s.eval(user, "Unknown.level@A")
	assert.Equal(t, common.CodeInvalidArgument, response.Code)
	response = s.eval(user, "Huobi.age@A")
	assert.Equal(t, common.CodeInvalidArgument, response.Code)
	response = s.eval(user, "Huobi.level@")
	assert.Equal(t, common.CodeInvalidArgument, response.Code)
}

func TestKyc_ChangeOrgAdmin(t *testing.T) {
	s := newKycSuite(t)
	newAdmin := unittest.AddressFixture()
	s.fund(newAdmin)

	receipt := s.exec(newAdmin, "change_org_admin", kyc.ChangeOrgAdminPayload{
		Name:     unittest.KycOrgName,
		NewAdmin: newAdmin,
	})
	require.True(t, receipt.Failed())

	receipt = s.exec(s.admin, "change_org_admin", kyc.ChangeOrgAdminPayload{
		Name:     unittest.KycOrgName,
		NewAdmin: newAdmin,
	})
	require.False(t, receipt.Failed(), receipt.Response.String())

	receipt = s.exec(newAdmin, "update_user_tags", kyc.UpdateUserTagsPayload{
		OrgName: unittest.KycOrgName,
		User:    newAdmin,
		Tags:    kyc.UserTags{"country": {"US"}},
	})
	require.False(t, receipt.Failed(), receipt.Response.String())
	assert.True(t, s.evalResult(newAdmin, "Huobi.country@US"))
}
