// Package protocol defines the wire schema exchanged with clients: a
// MessagePack container carrying a correlation number and a tagged
// request or response payload, plus the request/response structs for
// every operation in the handler set.
package protocol

import "github.com/extrachat/server/internal/model"

// ProtocolVersion is the version a Version request must carry; any
// other value is rejected and the connection closed.
const ProtocolVersion uint32 = 1

// Kind strings double as the msgpack "kind" discriminant and as the
// map key clients use to pick a decoder.
const (
	KindPing           = "ping"
	KindVersion        = "version"
	KindRegister       = "register"
	KindAuthenticate   = "authenticate"
	KindMessage        = "message"
	KindCreate         = "create"
	KindDisband        = "disband"
	KindInvite         = "invite"
	KindInvited        = "invited"
	KindJoin           = "join"
	KindLeave          = "leave"
	KindKick           = "kick"
	KindList           = "list"
	KindPromote        = "promote"
	KindUpdate         = "update"
	KindUpdated        = "updated"
	KindPublicKey      = "public_key"
	KindSecrets        = "secrets"
	KindSendSecrets    = "send_secrets"
	KindAllowInvites   = "allow_invites"
	KindDeleteAccount  = "delete_account"
	KindMemberChange   = "member_change"
	KindAnnounce       = "announce"
	KindError          = "error"
)

// Request payloads, one per spec §6.2 request variant.

type PingRequest struct{}

type VersionRequest struct {
	Version uint32 `msgpack:"version"`
}

type RegisterRequest struct {
	Name               string `msgpack:"name"`
	World              uint16 `msgpack:"world"`
	ChallengeCompleted bool   `msgpack:"challenge_completed"`
}

type AuthenticateRequest struct {
	Key          string `msgpack:"key"`
	PublicKey    []byte `msgpack:"pk"`
	AllowInvites bool   `msgpack:"allow_invites"`
}

type MessageRequest struct {
	Channel [16]byte `msgpack:"channel"`
	Message []byte   `msgpack:"message"`
}

type CreateRequest struct {
	Name []byte `msgpack:"name"`
}

type DisbandRequest struct {
	Channel [16]byte `msgpack:"channel"`
}

type InviteRequest struct {
	Channel         [16]byte `msgpack:"channel"`
	Name            string   `msgpack:"name"`
	World           uint16   `msgpack:"world"`
	EncryptedSecret []byte   `msgpack:"encrypted_secret"`
}

type JoinRequest struct {
	Channel [16]byte `msgpack:"channel"`
}

type LeaveRequest struct {
	Channel [16]byte `msgpack:"channel"`
}

type KickRequest struct {
	Channel [16]byte `msgpack:"channel"`
	Name    string   `msgpack:"name"`
	World   uint16   `msgpack:"world"`
}

// ListRequest variants are distinguished by the list_kind field since
// Go has no payload-carrying-enum sugar; Channel is only meaningful
// when ListKind == ListKindMembers.
type ListKind string

const (
	ListKindAll      ListKind = "all"
	ListKindChannels ListKind = "channels"
	ListKindMembers  ListKind = "members"
	ListKindInvites  ListKind = "invites"
)

type ListRequest struct {
	ListKind ListKind  `msgpack:"list_kind"`
	Channel  *[16]byte `msgpack:"channel,omitempty"`
}

type PromoteRequest struct {
	Channel [16]byte   `msgpack:"channel"`
	Name    string     `msgpack:"name"`
	World   uint16     `msgpack:"world"`
	Rank    model.Rank `msgpack:"rank"`
}

type UpdateKind string

const UpdateKindName UpdateKind = "name"

type UpdateRequest struct {
	Channel [16]byte   `msgpack:"channel"`
	Kind    UpdateKind `msgpack:"update_kind"`
	Name    []byte     `msgpack:"name,omitempty"`
}

type PublicKeyRequest struct {
	Name  string `msgpack:"name"`
	World uint16 `msgpack:"world"`
}

type SecretsRequest struct {
	Channel [16]byte `msgpack:"channel"`
}

type SendSecretsRequest struct {
	RequestID             [16]byte `msgpack:"request_id"`
	EncryptedSharedSecret []byte   `msgpack:"encrypted_shared_secret,omitempty"`
}

type AllowInvitesRequest struct {
	Allowed bool `msgpack:"allowed"`
}

type DeleteAccountRequest struct{}

// Response payloads.

type PingResponse struct{}

type VersionResponse struct {
	Version uint32 `msgpack:"version"`
}

// RegisterResponse is a three-way union flattened with a kind tag of
// its own, since the outcome (challenge/failure/success) isn't known
// until the handler runs.
type RegisterKind string

const (
	RegisterKindChallenge RegisterKind = "challenge"
	RegisterKindFailure   RegisterKind = "failure"
	RegisterKindSuccess   RegisterKind = "success"
)

type RegisterResponse struct {
	RegisterKind RegisterKind `msgpack:"register_kind"`
	Challenge    string       `msgpack:"challenge,omitempty"`
	Key          string       `msgpack:"key,omitempty"`
}

// AuthenticateResponse carries its own inline error per spec §7.
type AuthenticateResponse struct {
	Error *string `msgpack:"error,omitempty"`
}

type MessageResponse struct {
	Channel [16]byte `msgpack:"channel"`
	Sender  string   `msgpack:"sender"`
	World   uint16   `msgpack:"world"`
	Message []byte   `msgpack:"message"`
}

type ChannelPayload struct {
	ID      [16]byte         `msgpack:"id"`
	Name    []byte           `msgpack:"name"`
	Members []ChannelMember  `msgpack:"members"`
}

type ChannelMember struct {
	Name   string     `msgpack:"name"`
	World  uint16      `msgpack:"world"`
	Rank   model.Rank  `msgpack:"rank"`
	Online bool        `msgpack:"online"`
}

type SimpleChannelPayload struct {
	ID   [16]byte   `msgpack:"id"`
	Name []byte     `msgpack:"name"`
	Rank model.Rank `msgpack:"rank"`
}

type CreateResponse struct {
	Channel ChannelPayload `msgpack:"channel"`
}

type DisbandResponse struct {
	Channel [16]byte `msgpack:"channel"`
}

type InviteResponse struct {
	Channel [16]byte `msgpack:"channel"`
	Name    string   `msgpack:"name"`
	World   uint16   `msgpack:"world"`
}

type InvitedResponse struct {
	Channel         ChannelPayload `msgpack:"channel"`
	Name            string         `msgpack:"name"`
	World           uint16         `msgpack:"world"`
	PublicKey       []byte         `msgpack:"pk"`
	EncryptedSecret []byte         `msgpack:"encrypted_secret"`
}

type JoinResponse struct {
	Channel ChannelPayload `msgpack:"channel"`
}

// LeaveResponse carries its own inline error per spec §7.
type LeaveResponse struct {
	Channel [16]byte `msgpack:"channel"`
	Error   *string  `msgpack:"error,omitempty"`
}

func LeaveSuccess(channel [16]byte) LeaveResponse {
	return LeaveResponse{Channel: channel}
}

func LeaveError(channel [16]byte, msg string) LeaveResponse {
	return LeaveResponse{Channel: channel, Error: &msg}
}

type KickResponse struct {
	Channel [16]byte `msgpack:"channel"`
	Name    string   `msgpack:"name"`
	World   uint16   `msgpack:"world"`
}

type ListResponse struct {
	ListKind ListKind               `msgpack:"list_kind"`
	Channels []ChannelPayload       `msgpack:"channels,omitempty"`
	Invites  []ChannelPayload       `msgpack:"invites,omitempty"`
	Simple   []SimpleChannelPayload `msgpack:"simple,omitempty"`
	ID       *[16]byte              `msgpack:"id,omitempty"`
	Members  []ChannelMember        `msgpack:"members,omitempty"`
}

type PromoteResponse struct {
	Channel [16]byte   `msgpack:"channel"`
	Name    string     `msgpack:"name"`
	World   uint16     `msgpack:"world"`
	Rank    model.Rank `msgpack:"rank"`
}

type UpdateResponse struct {
	Channel [16]byte `msgpack:"channel"`
}

type UpdatedResponse struct {
	Channel [16]byte   `msgpack:"channel"`
	Kind    UpdateKind `msgpack:"update_kind"`
	Name    []byte     `msgpack:"name,omitempty"`
}

type PublicKeyResponse struct {
	Name      string `msgpack:"name"`
	World     uint16 `msgpack:"world"`
	PublicKey []byte `msgpack:"pk,omitempty"`
}

type AllowInvitesResponse struct {
	Allowed bool `msgpack:"allowed"`
}

type DeleteAccountResponse struct{}

// MemberChangeKind discriminates the member_change fan-out event.
type MemberChangeKind string

const (
	MemberChangeInvite       MemberChangeKind = "invite"
	MemberChangeInviteDecline MemberChangeKind = "invite_decline"
	MemberChangeInviteCancel MemberChangeKind = "invite_cancel"
	MemberChangeJoin         MemberChangeKind = "join"
	MemberChangeLeave        MemberChangeKind = "leave"
	MemberChangePromote      MemberChangeKind = "promote"
	MemberChangeKick         MemberChangeKind = "kick"
)

type MemberChangeResponse struct {
	Channel       [16]byte         `msgpack:"channel"`
	Name          string           `msgpack:"name"`
	World         uint16           `msgpack:"world"`
	Kind          MemberChangeKind `msgpack:"member_change_kind"`
	Inviter       string           `msgpack:"inviter,omitempty"`
	InviterWorld  uint16           `msgpack:"inviter_world,omitempty"`
	Canceler      string           `msgpack:"canceler,omitempty"`
	CancelerWorld uint16           `msgpack:"canceler_world,omitempty"`
	Kicker        string           `msgpack:"kicker,omitempty"`
	KickerWorld   uint16           `msgpack:"kicker_world,omitempty"`
	Rank          model.Rank       `msgpack:"rank,omitempty"`
}

type SecretsResponse struct {
	Channel               [16]byte `msgpack:"channel"`
	PublicKey             []byte   `msgpack:"pk"`
	EncryptedSharedSecret []byte   `msgpack:"encrypted_shared_secret"`
}

type SendSecretsResponse struct {
	Channel   [16]byte `msgpack:"channel"`
	RequestID [16]byte `msgpack:"request_id"`
	PublicKey []byte   `msgpack:"pk"`
}

type AnnounceResponse struct {
	Announcement string `msgpack:"announcement"`
}

// Error is the generic protocol-level error envelope of spec §7. It
// also implements the error interface so handlers can return it
// directly.
type Error struct {
	Channel *[16]byte `msgpack:"channel,omitempty"`
	Message string    `msgpack:"error"`
}

func (e *Error) Error() string { return e.Message }

func NewError(msg string) *Error {
	return &Error{Message: msg}
}

func NewChannelError(channel [16]byte, msg string) *Error {
	return &Error{Channel: &channel, Message: msg}
}
