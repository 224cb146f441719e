package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Container is the outer envelope of every frame: a client-chosen
// correlation number and a tagged payload. Server-initiated messages
// (fan-out, announce) use number 0 per spec §4.1.
type Container struct {
	Number  uint32
	Kind    string
	Payload any
}

// newRequestPayload returns a zero-value pointer for the given kind
// string so Decode has something concrete to unmarshal into.
func newRequestPayload(kind string) (any, bool) {
	switch kind {
	case KindPing:
		return &PingRequest{}, true
	case KindVersion:
		return &VersionRequest{}, true
	case KindRegister:
		return &RegisterRequest{}, true
	case KindAuthenticate:
		return &AuthenticateRequest{}, true
	case KindMessage:
		return &MessageRequest{}, true
	case KindCreate:
		return &CreateRequest{}, true
	case KindDisband:
		return &DisbandRequest{}, true
	case KindInvite:
		return &InviteRequest{}, true
	case KindJoin:
		return &JoinRequest{}, true
	case KindLeave:
		return &LeaveRequest{}, true
	case KindKick:
		return &KickRequest{}, true
	case KindList:
		return &ListRequest{}, true
	case KindPromote:
		return &PromoteRequest{}, true
	case KindUpdate:
		return &UpdateRequest{}, true
	case KindPublicKey:
		return &PublicKeyRequest{}, true
	case KindSecrets:
		return &SecretsRequest{}, true
	case KindSendSecrets:
		return &SendSecretsRequest{}, true
	case KindAllowInvites:
		return &AllowInvitesRequest{}, true
	case KindDeleteAccount:
		return &DeleteAccountRequest{}, true
	default:
		return nil, false
	}
}

// kindOf returns the wire kind tag for a response payload, so Encode
// never needs the caller to pass it separately.
func kindOf(payload any) (string, error) {
	switch payload.(type) {
	case *PingResponse, PingResponse:
		return KindPing, nil
	case *VersionResponse, VersionResponse:
		return KindVersion, nil
	case *RegisterResponse, RegisterResponse:
		return KindRegister, nil
	case *AuthenticateResponse, AuthenticateResponse:
		return KindAuthenticate, nil
	case *MessageResponse, MessageResponse:
		return KindMessage, nil
	case *Error:
		return KindError, nil
	case *CreateResponse, CreateResponse:
		return KindCreate, nil
	case *DisbandResponse, DisbandResponse:
		return KindDisband, nil
	case *InviteResponse, InviteResponse:
		return KindInvite, nil
	case *InvitedResponse, InvitedResponse:
		return KindInvited, nil
	case *JoinResponse, JoinResponse:
		return KindJoin, nil
	case *LeaveResponse, LeaveResponse:
		return KindLeave, nil
	case *KickResponse, KickResponse:
		return KindKick, nil
	case *ListResponse, ListResponse:
		return KindList, nil
	case *PromoteResponse, PromoteResponse:
		return KindPromote, nil
	case *UpdateResponse, UpdateResponse:
		return KindUpdate, nil
	case *UpdatedResponse, UpdatedResponse:
		return KindUpdated, nil
	case *PublicKeyResponse, PublicKeyResponse:
		return KindPublicKey, nil
	case *MemberChangeResponse, MemberChangeResponse:
		return KindMemberChange, nil
	case *SecretsResponse, SecretsResponse:
		return KindSecrets, nil
	case *SendSecretsResponse, SendSecretsResponse:
		return KindSendSecrets, nil
	case *AllowInvitesResponse, AllowInvitesResponse:
		return KindAllowInvites, nil
	case *DeleteAccountResponse, DeleteAccountResponse:
		return KindDeleteAccount, nil
	case *AnnounceResponse, AnnounceResponse:
		return KindAnnounce, nil
	default:
		return "", fmt.Errorf("protocol: unrecognized response payload type %T", payload)
	}
}

// EncodeResponse flattens number, kind, and the payload's own fields
// into one msgpack map, so the wire shape matches spec §6.2's flat
// "kind" discriminant rather than an externally-tagged wrapper.
func EncodeResponse(number uint32, payload any) ([]byte, error) {
	kind, err := kindOf(payload)
	if err != nil {
		return nil, err
	}

	fields, err := toMap(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: encoding %s payload: %w", kind, err)
	}
	fields["number"] = number
	fields["kind"] = kind

	out, err := msgpack.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshaling container: %w", err)
	}
	return out, nil
}

// DecodeRequest parses a client frame into its number and a concrete
// request struct, resolved by the flattened "kind" field.
func DecodeRequest(data []byte) (uint32, any, error) {
	var fields map[string]any
	if err := msgpack.Unmarshal(data, &fields); err != nil {
		return 0, nil, fmt.Errorf("protocol: unmarshaling container: %w", err)
	}

	kindVal, ok := fields["kind"]
	if !ok {
		return 0, nil, fmt.Errorf("protocol: missing kind field")
	}
	kind, ok := kindVal.(string)
	if !ok {
		return 0, nil, fmt.Errorf("protocol: kind field is not a string")
	}

	var number uint32
	if n, ok := fields["number"]; ok {
		number, ok = toUint32(n)
		if !ok {
			return 0, nil, fmt.Errorf("protocol: number field is not numeric")
		}
	}

	payload, ok := newRequestPayload(kind)
	if !ok {
		return number, nil, fmt.Errorf("protocol: unrecognized request kind %q", kind)
	}

	delete(fields, "number")
	delete(fields, "kind")

	raw, err := msgpack.Marshal(fields)
	if err != nil {
		return number, nil, fmt.Errorf("protocol: re-marshaling payload fields: %w", err)
	}
	if err := msgpack.Unmarshal(raw, payload); err != nil {
		return number, nil, fmt.Errorf("protocol: unmarshaling %s payload: %w", kind, err)
	}

	return number, payload, nil
}

func toMap(payload any) (map[string]any, error) {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := msgpack.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func toUint32(v any) (uint32, bool) {
	switch n := v.(type) {
	case int64:
		return uint32(n), true
	case uint64:
		return uint32(n), true
	case int8:
		return uint32(n), true
	case int16:
		return uint32(n), true
	case int32:
		return uint32(n), true
	case uint8:
		return uint32(n), true
	case uint16:
		return uint32(n), true
	case uint32:
		return n, true
	case float64:
		return uint32(n), true
	default:
		return 0, false
	}
}
