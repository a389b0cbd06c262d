package model

import "encoding/json"

// ArgKind discriminates the argument slots of an unsigned request.
type ArgKind string

const (
	ArgShared ArgKind = "shared"
	ArgOwned  ArgKind = "owned"
	ArgPure   ArgKind = "pure"
)

// Pure value types understood by the external signer.
const (
	PureString  = "string"
	PureAddress = "address"
	PureU64     = "u64"
	PureBool    = "bool"
)

// SharedRef - version-aware reference to a shared object, recomputed for
// every build and never reused across requests.
type SharedRef struct {
	ObjectID             string `json:"objectId"`
	InitialSharedVersion uint64 `json:"initialSharedVersion"`
	Mutable              bool   `json:"mutable"`
}

// PureValue - a plain-value argument; native serialization is owned by the
// external signer, so values travel as tagged strings.
type PureValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// CallArg - one argument slot of a call
type CallArg struct {
	Kind   ArgKind    `json:"kind"`
	Shared *SharedRef `json:"shared,omitempty"`
	Owned  string     `json:"owned,omitempty"`
	Pure   *PureValue `json:"pure,omitempty"`
}

// UnsignedRequest - a fully resolved mutating request, ready for the external
// signing and submission collaborator
type UnsignedRequest struct {
	Sender string    `json:"sender"`
	Target string    `json:"target"`
	Args   []CallArg `json:"args"`
}

// ExecutionResult - outcome reported by the submission collaborator
type ExecutionResult struct {
	Success bool            `json:"success"`
	Digest  string          `json:"digest"`
	Effects json.RawMessage `json:"effects,omitempty"`
	Error   string          `json:"error,omitempty"`
}
