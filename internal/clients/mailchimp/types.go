package mailchimp

type Stats struct {
	MemberCount      int `json:"member_count"`
	UnsubscribeCount int `json:"unsubscribe_count"`
}

type List struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stats Stats  `json:"stats"`
}

type listsResponse struct {
	Lists      []List `json:"lists"`
	TotalItems int    `json:"total_items"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Member struct {
	EmailAddress string         `json:"email_address"`
	Status       string         `json:"status"`
	FullName     string         `json:"full_name"`
	MergeFields  map[string]any `json:"merge_fields,omitempty"`
	Tags         []Tag          `json:"tags"`
	ListID       string         `json:"list_id"`
}

// TagNames returns the names of the member's tags.
func (m Member) TagNames() []string {
	names := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		names = append(names, t.Name)
	}
	return names
}

type membersResponse struct {
	Members    []Member `json:"members"`
	TotalItems int      `json:"total_items"`
}

type TagStatus string

const (
	TagActive   TagStatus = "active"
	TagInactive TagStatus = "inactive"
)

type TagUpdate struct {
	Name   string    `json:"name"`
	Status TagStatus `json:"status"`
}

type tagsRequest struct {
	Tags []TagUpdate `json:"tags"`
}

type upsertMemberRequest struct {
	EmailAddress string            `json:"email_address"`
	StatusIfNew  string            `json:"status_if_new"`
	MergeFields  map[string]string `json:"merge_fields,omitempty"`
}

type Opens struct {
	UniqueOpens int     `json:"unique_opens"`
	OpenRate    float64 `json:"open_rate"`
}

type Clicks struct {
	UniqueClicks int     `json:"unique_subscriber_clicks"`
	ClickRate    float64 `json:"click_rate"`
}

type Report struct {
	ID            string `json:"id"`
	CampaignTitle string `json:"campaign_title"`
	SubjectLine   string `json:"subject_line"`
	EmailsSent    int    `json:"emails_sent"`
	SendTime      string `json:"send_time"`
	Opens         Opens  `json:"opens"`
	Clicks        Clicks `json:"clicks"`
	Unsubscribed  int    `json:"unsubscribed"`
}

type reportsResponse struct {
	Reports []Report `json:"reports"`
}
