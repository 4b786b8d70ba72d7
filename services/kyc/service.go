// Package kyc keeps KYC organizations and the tags they assign to users,
// and evaluates tag expressions for other services.
package kyc

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/common"
)

const (
	keyServiceAdmin = "service_admin"
	keyOrgs         = "orgs"

	eventRegisterOrg         = "register_org"
	eventUpdateSupportedTags = "update_supported_tags"
	eventUpdateUserTags      = "update_user_tags"
	eventChangeOrgAdmin      = "change_org_admin"
)

func orgKey(name string) string {
	return "org/" + name
}

func userTagsKey(org string, user types.Address) string {
	return "tags/" + org + "/" + user.Hex()
}

type Service struct {
	sdk environment.ServiceSDK
}

var (
	_ registry.Service = (*Service)(nil)
	_ registry.Genesis = (*Service)(nil)
)

func New(sdk environment.ServiceSDK, _ registry.Dependencies) (registry.Service, error) {
	return &Service{sdk: sdk}, nil
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) Methods() []environment.Method {
	return []environment.Method{
		{Name: "register_org", Kind: environment.MethodKindWrite, Cycles: 10, Handler: s.registerOrg},
		{Name: "update_supported_tags", Kind: environment.MethodKindWrite, Cycles: 5, Handler: s.updateSupportedTags},
		{Name: "update_user_tags", Kind: environment.MethodKindWrite, Cycles: 5, Handler: s.updateUserTags},
		{Name: "change_org_admin", Kind: environment.MethodKindWrite, Cycles: 3, Handler: s.changeOrgAdmin},
		{Name: "get_orgs", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getOrgs},
		{Name: "get_org_info", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getOrgInfo},
		{Name: "get_user_tags", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getUserTags},
		{Name: "eval_user_tag_expression", Kind: environment.MethodKindRead, Cycles: 2, Handler: s.evalUserTagExpression},
	}
}

func (s *Service) InitGenesis(payload string) error {
	var genesis GenesisPayload
	if err := common.Decode(payload, &genesis); err != nil {
		return fmt.Errorf("invalid kyc genesis: %w", err)
	}

	if err := s.sdk.SetValue(keyServiceAdmin, genesis.ServiceAdmin); err != nil {
		return err
	}
	return s.storeNewOrg(Organization{
		Name:          genesis.OrgName,
		Description:   genesis.OrgDescription,
		Admin:         genesis.OrgAdmin,
		SupportedTags: normalizeTags(genesis.SupportedTags),
	})
}

// normalizeTags sorts and dedups tag names.
func normalizeTags(tags []string) []string {
	tags = append([]string{}, tags...)
	slices.Sort(tags)
	return slices.Compact(tags)
}

func (s *Service) serviceAdmin() (types.Address, error) {
	var admin types.Address
	_, err := s.sdk.GetValue(keyServiceAdmin, &admin)
	return admin, err
}

func (s *Service) orgNames() ([]string, error) {
	var names []string
	_, err := s.sdk.GetValue(keyOrgs, &names)
	return names, err
}

func (s *Service) loadOrg(name string) (Organization, bool, error) {
	var org Organization
	found, err := s.sdk.GetValue(orgKey(name), &org)
	return org, found, err
}

func (s *Service) storeNewOrg(org Organization) error {
	names, err := s.orgNames()
	if err != nil {
		return err
	}
	if slices.Contains(names, org.Name) {
		return fmt.Errorf("organization %s already exists", org.Name)
	}

	names = append(names, org.Name)
	if err := s.sdk.SetValue(keyOrgs, names); err != nil {
		return err
	}
	return s.sdk.SetValue(orgKey(org.Name), org)
}

func (s *Service) loadUserTags(org string, user types.Address) (UserTags, error) {
	tags := UserTags{}
	_, err := s.sdk.GetValue(userTagsKey(org, user), &tags)
	return tags, err
}

func (s *Service) emit(topic string, event interface{}) error {
	data, err := common.Encode(event)
	if err != nil {
		return err
	}
	return s.sdk.EmitEvent(topic, data)
}

// loadAdministeredOrg loads an org the caller administers. The service admin
// administers every org when allowServiceAdmin is set.
func (s *Service) loadAdministeredOrg(
	name string,
	allowServiceAdmin bool,
) (
	Organization,
	types.ServiceResponse,
) {
	org, found, err := s.loadOrg(name)
	if err != nil {
		return Organization{}, common.SDKError(err)
	}
	if !found {
		return Organization{}, common.NotFound("organization %s not found", name)
	}

	caller := s.sdk.Context().Caller
	if caller == org.Admin {
		return org, types.NewSuccessResponse("")
	}
	if allowServiceAdmin {
		admin, err := s.serviceAdmin()
		if err != nil {
			return Organization{}, common.SDKError(err)
		}
		if caller == admin {
			return org, types.NewSuccessResponse("")
		}
	}
	return Organization{}, common.PermissionDenied(
		"%s is not admin of organization %s",
		caller.Hex(),
		name)
}

func (s *Service) registerOrg(payload string) types.ServiceResponse {
	var req RegisterOrgPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "register_org", err)
	}

	admin, err := s.serviceAdmin()
	if err != nil {
		return common.SDKError(err)
	}
	caller := s.sdk.Context().Caller
	if caller != admin {
		return common.PermissionDenied("%s is not the kyc service admin", caller.Hex())
	}

	_, found, err := s.loadOrg(req.Name)
	if err != nil {
		return common.SDKError(err)
	}
	if found {
		return types.NewErrorResponse(common.CodeAlreadyExists, "organization %s already exists", req.Name)
	}

	org := Organization{
		Name:          req.Name,
		Description:   req.Description,
		Admin:         req.Admin,
		SupportedTags: normalizeTags(req.SupportedTags),
	}
	if err := s.storeNewOrg(org); err != nil {
		return common.SDKError(err)
	}
	if err := s.emit(eventRegisterOrg, org); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) updateSupportedTags(payload string) types.ServiceResponse {
	var req UpdateSupportedTagsPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "update_supported_tags", err)
	}

	org, response := s.loadAdministeredOrg(req.OrgName, false)
	if response.IsError() {
		return response
	}

	org.SupportedTags = normalizeTags(req.SupportedTags)
	if err := s.sdk.SetValue(orgKey(org.Name), org); err != nil {
		return common.SDKError(err)
	}
	if err := s.emit(eventUpdateSupportedTags, org); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) updateUserTags(payload string) types.ServiceResponse {
	var req UpdateUserTagsPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "update_user_tags", err)
	}

	org, response := s.loadAdministeredOrg(req.OrgName, false)
	if response.IsError() {
		return response
	}

	tags := make(UserTags, len(req.Tags))
	names := maps.Keys(req.Tags)
	slices.Sort(names)
	for _, name := range names {
		if !slices.Contains(org.SupportedTags, name) {
			return common.InvalidArgument("tag %s is not supported by organization %s", name, org.Name)
		}
		for _, value := range req.Tags[name] {
			if !common.IsIdentifier(value) || value == NullValue {
				return common.InvalidArgument("invalid value %q of tag %s", value, name)
			}
		}
		values := normalizeTags(req.Tags[name])
		if len(values) > 0 {
			tags[name] = values
		}
	}

	key := userTagsKey(org.Name, req.User)
	var err error
	if len(tags) == 0 {
		err = s.sdk.Remove(key)
	} else {
		err = s.sdk.SetValue(key, tags)
	}
	if err != nil {
		return common.SDKError(err)
	}

	if err := s.emit(eventUpdateUserTags, req); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) changeOrgAdmin(payload string) types.ServiceResponse {
	var req ChangeOrgAdminPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "change_org_admin", err)
	}

	org, response := s.loadAdministeredOrg(req.Name, true)
	if response.IsError() {
		return response
	}

	org.Admin = req.NewAdmin
	if err := s.sdk.SetValue(orgKey(org.Name), org); err != nil {
		return common.SDKError(err)
	}
	if err := s.emit(eventChangeOrgAdmin, org); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) getOrgs(string) types.ServiceResponse {
	names, err := s.orgNames()
	if err != nil {
		return common.SDKError(err)
	}
	if names == nil {
		names = []string{}
	}
	return common.Success(names)
}

func (s *Service) getOrgInfo(payload string) types.ServiceResponse {
	var req GetOrgInfoPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "get_org_info", err)
	}

	org, found, err := s.loadOrg(req.Name)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		return common.NotFound("organization %s not found", req.Name)
	}
	return common.Success(org)
}

func (s *Service) getUserTags(payload string) types.ServiceResponse {
	var req GetUserTagsPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "get_user_tags", err)
	}

	tags, err := s.loadUserTags(req.OrgName, req.User)
	if err != nil {
		return common.SDKError(err)
	}
	return common.Success(tags)
}

func (s *Service) evalUserTagExpression(payload string) types.ServiceResponse {
	var req EvalUserTagExpressionPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "eval_user_tag_expression", err)
	}

	expr, err := ParseExpression(req.Expression)
	if err != nil {
		return common.InvalidArgument("invalid expression: %s", err)
	}

	// each org is read at most once per evaluation
	orgs := make(map[string]Organization)
	userTags := make(map[string]UserTags)

	var invalid error
	lookup := func(orgName string, tag string) ([]string, error) {
		org, ok := orgs[orgName]
		if !ok {
			var found bool
			var err error
			org, found, err = s.loadOrg(orgName)
			if err != nil {
				return nil, err
			}
			if !found {
				invalid = fmt.Errorf("organization %s not found", orgName)
				return nil, invalid
			}
			orgs[orgName] = org
		}
		if !slices.Contains(org.SupportedTags, tag) {
			invalid = fmt.Errorf("tag %s is not supported by organization %s", tag, orgName)
			return nil, invalid
		}

		tags, ok := userTags[orgName]
		if !ok {
			var err error
			tags, err = s.loadUserTags(orgName, req.User)
			if err != nil {
				return nil, err
			}
			userTags[orgName] = tags
		}
		return tags[tag], nil
	}

	result, err := expr.Eval(lookup)
	if err != nil {
		if invalid != nil {
			return common.InvalidArgument("invalid expression: %s", invalid)
		}
		return common.SDKError(err)
	}
	return common.Success(EvalUserTagExpressionResponse{Result: result})
}
