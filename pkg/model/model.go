package model

// Organization - assembled domain view of an organization and its nested state
type Organization struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Admins      []string   `json:"admins"`
	Members     []string   `json:"members"`
	Proposals   []Proposal `json:"proposals"`
}

// Proposal - assembled domain view of a proposal and its voter set
type Proposal struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Creator     string   `json:"creator"`
	YesVotes    uint64   `json:"yesVotes"`
	NoVotes     uint64   `json:"noVotes"`
	Deadline    int64    `json:"deadline"`
	Closed      bool     `json:"closed"`
	Voters      []string `json:"voters"`
}

// FindProposal returns the index of the proposal with the given id, or -1.
func (o Organization) FindProposal(id string) int {
	for i, p := range o.Proposals {
		if p.ID == id {
			return i
		}
	}
	return -1
}
