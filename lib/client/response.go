package client

type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
}

type Winner struct {
	Links struct {
		Self     Link `json:"self"`
		Proposal Link `json:"proposal"`
	} `json:"_links"`

	Index     uint64 `json:"index"`
	Name      string `json:"name"`
	VoteCount uint64 `json:"vote_count"`
}

type Ballot struct {
	Links struct {
		Self       Link `json:"self"`
		Proposals  Link `json:"proposals"`
		Winner     Link `json:"winner"`
		Voter      Link `json:"voter"`
		Operations Link `json:"operations"`
		Subscribe  Link `json:"subscribe"`
	} `json:"_links"`

	Chairperson string `json:"chairperson"`
	NetworkID   string `json:"network_id"`
	Created     string `json:"created"`
	Proposals   int    `json:"proposals"`
	Voters      int    `json:"voters"`
	Records     uint64 `json:"records"`
	Winner      struct {
		Index     uint64 `json:"index"`
		Name      string `json:"name"`
		VoteCount uint64 `json:"vote_count"`
	} `json:"winner"`
}

type Proposal struct {
	Links struct {
		Self Link `json:"self"`
	} `json:"_links"`

	Index     uint64 `json:"index"`
	Name      string `json:"name"`
	VoteCount uint64 `json:"vote_count"`
}

type ProposalsPage struct {
	Links struct {
		Self Link `json:"self"`
	} `json:"_links"`
	Embedded struct {
		Records []Proposal `json:"records"`
	} `json:"_embedded"`
}

type Voter struct {
	Links struct {
		Self     Link `json:"self"`
		Delegate Link `json:"delegate"`
	} `json:"_links"`

	Address  string  `json:"address"`
	Weight   uint64  `json:"weight"`
	Voted    bool    `json:"voted"`
	State    string  `json:"state"`
	Delegate string  `json:"delegate"`
	Vote     *uint64 `json:"vote"`
}

type Record struct {
	Links struct {
		Self     Link `json:"self"`
		Source   Link `json:"source"`
		Target   Link `json:"target"`
		Proposal Link `json:"proposal"`
	} `json:"_links"`

	Seq       uint64 `json:"seq"`
	Hash      string `json:"hash"`
	Type      string `json:"type"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Proposal  uint64 `json:"proposal"`
	Created   string `json:"created"`
	Applied   string `json:"applied"`
	Signature string `json:"signature"`
}

type RecordsPage struct {
	Links struct {
		Self Link `json:"self"`
		Next Link `json:"next"`
		Prev Link `json:"prev"`
	} `json:"_links"`
	Embedded struct {
		Records []Record `json:"records"`
	} `json:"_embedded"`
}
