package kyc

import (
	"github.com/servicechain/executor/model/types"
)

const ServiceName = "kyc"

// Organization is a KYC provider. Its admin assigns the tag values of users,
// for the tags the organization supports.
type Organization struct {
	Name          string        `json:"name" cbor:"name"`
	Description   string        `json:"description" cbor:"description"`
	Admin         types.Address `json:"admin" cbor:"admin"`
	SupportedTags []string      `json:"supported_tags" cbor:"supported_tags"`
}

// UserTags maps a tag name to the values a user holds.
type UserTags map[string][]string

type GenesisPayload struct {
	OrgName        string        `json:"org_name" validate:"required,identifier"`
	OrgDescription string        `json:"org_description"`
	OrgAdmin       types.Address `json:"org_admin"`
	SupportedTags  []string      `json:"supported_tags" validate:"dive,identifier"`
	ServiceAdmin   types.Address `json:"service_admin"`
}

type RegisterOrgPayload struct {
	Name          string        `json:"name" validate:"required,identifier"`
	Description   string        `json:"description"`
	Admin         types.Address `json:"admin"`
	SupportedTags []string      `json:"supported_tags" validate:"dive,identifier"`
}

type UpdateSupportedTagsPayload struct {
	OrgName       string   `json:"org_name" validate:"required"`
	SupportedTags []string `json:"supported_tags" validate:"dive,identifier"`
}

type UpdateUserTagsPayload struct {
	OrgName string        `json:"org_name" validate:"required"`
	User    types.Address `json:"user"`
	Tags    UserTags      `json:"tags"`
}

type ChangeOrgAdminPayload struct {
	Name     string        `json:"name" validate:"required"`
	NewAdmin types.Address `json:"new_admin"`
}

type GetOrgInfoPayload struct {
	Name string `json:"name" validate:"required"`
}

type GetUserTagsPayload struct {
	OrgName string        `json:"org_name" validate:"required"`
	User    types.Address `json:"user"`
}

type EvalUserTagExpressionPayload struct {
	User       types.Address `json:"user"`
	Expression string        `json:"expression" validate:"required"`
}

type EvalUserTagExpressionResponse struct {
	Result bool `json:"result"`
}
