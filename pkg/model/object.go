package model

import (
	"bytes"
	"encoding/json"
)

// Object - raw ledger object projection as returned by the read API
type Object struct {
	ObjectID string   `json:"objectId"`
	Version  string   `json:"version"`
	Digest   string   `json:"digest"`
	Owner    *Owner   `json:"owner"`
	Content  *Content `json:"content"`
}

// Owner - ownership metadata of a ledger object
type Owner struct {
	AddressOwner string       `json:"AddressOwner,omitempty"`
	ObjectOwner  string       `json:"ObjectOwner,omitempty"`
	Shared       *SharedOwner `json:"Shared,omitempty"`
	Immutable    bool         `json:"-"`
}

// SharedOwner - metadata of a shared (multi-writer) object
type SharedOwner struct {
	InitialSharedVersion uint64 `json:"initial_shared_version"`
}

// UnmarshalJSON accepts both the object form and the bare "Immutable" string
// the ledger uses for frozen objects.
func (o *Owner) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte(`"Immutable"`)) {
		o.Immutable = true
		return nil
	}
	type ownerAlias Owner
	var a ownerAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = Owner(a)
	return nil
}

const moveObjectTag = "moveObject"

// Content - typed content of a ledger object, carrying the discriminator tag
type Content struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

// MoveFields returns the typed field payload, or false when the content tag
// is absent or not a recognized object tag.
func (o Object) MoveFields() (json.RawMessage, bool) {
	if o.Content == nil || o.Content.DataType != moveObjectTag || o.Content.Fields == nil {
		return nil, false
	}
	return o.Content.Fields, true
}

// TypeTag returns the full type tag of the object's content, if any.
func (o Object) TypeTag() string {
	if o.Content == nil {
		return ""
	}
	return o.Content.Type
}

// ObjectResult - one slot of a batched read, either an object or a per-slot error
type ObjectResult struct {
	Object Object
	Err    error
}

// idField - the ledger's nested object-id shape: {"id": {"id": "0x.."}}
type idField struct {
	ID string `json:"id"`
}

// TableRef - reference to a dynamic table anchored at a ledger object
type TableRef struct {
	Type   string `json:"type"`
	Fields struct {
		ID   idField `json:"id"`
		Size string  `json:"size"`
	} `json:"fields"`
}

// TableID returns the internal id used to enumerate the table's entries.
func (t TableRef) TableID() string { return t.Fields.ID.ID }

// RegistryFields - field payload of the root registry object
type RegistryFields struct {
	OrgList *[]string `json:"dao_list"`
}

// OrganizationFields - field payload of a raw organization object
type OrganizationFields struct {
	ID          idField  `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Admins      TableRef `json:"admins"`
	Members     TableRef `json:"members"`
	Proposals   TableRef `json:"proposals"`
}

// ProposalFields - field payload of a raw proposal object. Numeric fields
// arrive as decimal strings and are parsed during assembly.
type ProposalFields struct {
	ID          idField  `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Creator     string   `json:"creator"`
	YesVotes    string   `json:"yes_votes"`
	NoVotes     string   `json:"no_votes"`
	Deadline    string   `json:"deadline"`
	IsClosed    bool     `json:"is_closed"`
	Voters      TableRef `json:"voters"`
}

// CapabilityFields - field payload of an owned capability object
type CapabilityFields struct {
	ID    idField `json:"id"`
	OrgID string  `json:"dao_id"`
}
