// Package multisignature manages weighted multi-signature accounts and
// verifies secp256k1 transaction signatures for single and multi-signature
// senders.
package multisignature

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/common"
)

const (
	keyAccountNonce = "account_nonce"

	eventGenerateAccount = "generate_account"
	eventAddOwner        = "add_owner"
	eventRemoveOwner     = "remove_owner"
	eventSetThreshold    = "set_threshold"
)

func accountKey(address types.Address) string {
	return "account/" + address.Hex()
}

type Service struct {
	sdk environment.ServiceSDK
}

var _ registry.Service = (*Service)(nil)

func New(sdk environment.ServiceSDK, _ registry.Dependencies) (registry.Service, error) {
	return &Service{sdk: sdk}, nil
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) Methods() []environment.Method {
	return []environment.Method{
		{Name: "generate_account", Kind: environment.MethodKindWrite, Cycles: 10, Handler: s.generateAccount},
		{Name: "add_owner", Kind: environment.MethodKindWrite, Cycles: 5, Handler: s.addOwner},
		{Name: "remove_owner", Kind: environment.MethodKindWrite, Cycles: 5, Handler: s.removeOwner},
		{Name: "set_threshold", Kind: environment.MethodKindWrite, Cycles: 5, Handler: s.setThreshold},
		{Name: "get_account_from_address", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getAccountFromAddress},
		{Name: "verify_signature", Kind: environment.MethodKindRead, Cycles: 5, Handler: s.verifySignature},
	}
}

func (s *Service) loadAccount(address types.Address) (Account, bool, error) {
	var account Account
	found, err := s.sdk.GetValue(accountKey(address), &account)
	return account, found, err
}

func (s *Service) emit(topic string, event interface{}) error {
	data, err := common.Encode(event)
	if err != nil {
		return err
	}
	return s.sdk.EmitEvent(topic, data)
}

// newAccountAddress derives an address from the sender, the transaction hash
// and a service wide counter.
func (s *Service) newAccountAddress() (types.Address, error) {
	var nonce uint64
	if _, err := s.sdk.GetValue(keyAccountNonce, &nonce); err != nil {
		return types.ZeroAddress, err
	}
	if err := s.sdk.SetValue(keyAccountNonce, nonce+1); err != nil {
		return types.ZeroAddress, err
	}

	ctx := s.sdk.Context()
	seed := make([]byte, 0, types.HashLen+len(ctx.Caller)+8)
	seed = append(seed, ctx.Caller.Bytes()...)
	seed = append(seed, ctx.TxHash.Bytes()...)
	seed = binary.BigEndian.AppendUint64(seed, nonce)
	return types.AddressFromPubKey(seed), nil
}

func validateOwners(owners []Owner, threshold uint32) error {
	if len(owners) > MaxOwners {
		return fmt.Errorf("too many owners: %d > %d", len(owners), MaxOwners)
	}

	seen := make(map[types.Address]struct{}, len(owners))
	for _, owner := range owners {
		if _, ok := seen[owner.Address]; ok {
			return fmt.Errorf("duplicate owner %s", owner.Address.Hex())
		}
		seen[owner.Address] = struct{}{}
	}

	total := Account{Owners: owners}.totalWeight()
	if uint64(threshold) > total {
		return fmt.Errorf("threshold %d is above total weight %d", threshold, total)
	}
	return nil
}

// loadManagedAccount loads an account the caller may change: the caller is
// the account itself, or an owner whose weight reaches the threshold.
func (s *Service) loadManagedAccount(address types.Address) (Account, types.ServiceResponse) {
	account, found, err := s.loadAccount(address)
	if err != nil {
		return Account{}, common.SDKError(err)
	}
	if !found {
		return Account{}, common.NotFound("account %s not found", address.Hex())
	}

	caller := s.sdk.Context().Caller
	if caller == account.Address {
		return account, types.NewSuccessResponse("")
	}
	owner, _, ok := account.owner(caller)
	if ok && owner.Weight >= account.Threshold {
		return account, types.NewSuccessResponse("")
	}
	return Account{}, common.PermissionDenied("%s cannot manage account %s", caller.Hex(), address.Hex())
}

func (s *Service) storeAccount(topic string, account Account) types.ServiceResponse {
	if err := s.sdk.SetValue(accountKey(account.Address), account); err != nil {
		return common.SDKError(err)
	}
	if err := s.emit(topic, account); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) generateAccount(payload string) types.ServiceResponse {
	var req GenerateAccountPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "generate_account", err)
	}
	if err := validateOwners(req.Owners, req.Threshold); err != nil {
		return common.InvalidArgument("%s", err)
	}

	address, err := s.newAccountAddress()
	if err != nil {
		return common.SDKError(err)
	}

	account := Account{
		Address:   address,
		Owners:    req.Owners,
		Threshold: req.Threshold,
		Memo:      req.Memo,
	}
	if response := s.storeAccount(eventGenerateAccount, account); response.IsError() {
		return response
	}
	return common.Success(GenerateAccountResponse{Address: address})
}

func (s *Service) addOwner(payload string) types.ServiceResponse {
	var req AddOwnerPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "add_owner", err)
	}

	account, response := s.loadManagedAccount(req.AccountAddress)
	if response.IsError() {
		return response
	}

	owners := append(append([]Owner{}, account.Owners...), req.NewOwner)
	if err := validateOwners(owners, account.Threshold); err != nil {
		return common.InvalidArgument("%s", err)
	}
	account.Owners = owners
	return s.storeAccount(eventAddOwner, account)
}

func (s *Service) removeOwner(payload string) types.ServiceResponse {
	var req RemoveOwnerPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "remove_owner", err)
	}

	account, response := s.loadManagedAccount(req.AccountAddress)
	if response.IsError() {
		return response
	}

	_, i, ok := account.owner(req.Owner)
	if !ok {
		return common.NotFound("%s is not an owner of %s", req.Owner.Hex(), account.Address.Hex())
	}

	owners := append(append([]Owner{}, account.Owners[:i]...), account.Owners[i+1:]...)
	if err := validateOwners(owners, account.Threshold); err != nil {
		return common.InvalidArgument("%s", err)
	}
	account.Owners = owners
	return s.storeAccount(eventRemoveOwner, account)
}

func (s *Service) setThreshold(payload string) types.ServiceResponse {
	var req SetThresholdPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "set_threshold", err)
	}

	account, response := s.loadManagedAccount(req.AccountAddress)
	if response.IsError() {
		return response
	}

	if err := validateOwners(account.Owners, req.NewThreshold); err != nil {
		return common.InvalidArgument("%s", err)
	}
	account.Threshold = req.NewThreshold
	return s.storeAccount(eventSetThreshold, account)
}

func (s *Service) getAccountFromAddress(payload string) types.ServiceResponse {
	var req GetAccountPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "get_account_from_address", err)
	}

	account, found, err := s.loadAccount(req.Address)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		return common.NotFound("account %s not found", req.Address.Hex())
	}
	return common.Success(account)
}

// VerifySignature checks a DER encoded secp256k1 signature over hash and
// returns the address of the signer.
func VerifySignature(hash types.Hash, pubkey []byte, signature []byte) (types.Address, error) {
	pub, err := btcec.ParsePubKey(pubkey)
	if err != nil {
		return types.ZeroAddress, fmt.Errorf("invalid public key: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return types.ZeroAddress, fmt.Errorf("invalid signature: %w", err)
	}
	if !sig.Verify(hash.Bytes(), pub) {
		return types.ZeroAddress, fmt.Errorf("signature does not match public key")
	}
	return types.AddressFromPubKey(pub.SerializeCompressed()), nil
}

func (s *Service) verifySignature(payload string) types.ServiceResponse {
	var req VerifySignaturePayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "verify_signature", err)
	}
	if len(req.Pubkeys) != len(req.Signatures) {
		return common.InvalidArgument(
			"%d public keys for %d signatures",
			len(req.Pubkeys),
			len(req.Signatures))
	}
	if len(req.Pubkeys) > MaxOwners {
		return common.InvalidArgument("too many signatures: %d > %d", len(req.Pubkeys), MaxOwners)
	}

	account, found, err := s.loadAccount(req.Sender)
	if err != nil {
		return common.SDKError(err)
	}

	if !found {
		if len(req.Pubkeys) != 1 {
			return common.InvalidArgument("single signature sender %s needs exactly one signature", req.Sender.Hex())
		}
		signer, err := VerifySignature(req.TxHash, req.Pubkeys[0], req.Signatures[0])
		if err != nil {
			return types.NewErrorResponse(common.CodeRejected, "%s", err)
		}
		if signer != req.Sender {
			return types.NewErrorResponse(
				common.CodeRejected,
				"signer %s is not sender %s",
				signer.Hex(),
				req.Sender.Hex())
		}
		return types.NewSuccessResponse("")
	}

	signed := make(map[types.Address]struct{}, len(req.Pubkeys))
	weight := uint64(0)
	for i := range req.Pubkeys {
		signer, err := VerifySignature(req.TxHash, req.Pubkeys[i], req.Signatures[i])
		if err != nil {
			continue
		}
		owner, _, ok := account.owner(signer)
		if !ok {
			continue
		}
		if _, ok := signed[signer]; ok {
			continue
		}
		signed[signer] = struct{}{}
		weight += uint64(owner.Weight)
	}

	if weight < uint64(account.Threshold) {
		return types.NewErrorResponse(
			common.CodeRejected,
			"signature weight %d is below threshold %d of %s",
			weight,
			account.Threshold,
			req.Sender.Hex())
	}
	return types.NewSuccessResponse("")
}
