package types

import (
	"strings"
	"time"
)

// ====== ENUMS ======

type VimeoStatus string

const (
	VimeoStatusNone      VimeoStatus = ""
	VimeoStatusEnabled   VimeoStatus = "enabled"
	VimeoStatusDisabled  VimeoStatus = "disabled"
	VimeoStatusCancelled VimeoStatus = "cancelled"
	VimeoStatusExpired   VimeoStatus = "expired"
	VimeoStatusPaused    VimeoStatus = "paused"
	VimeoStatusRefunded  VimeoStatus = "refunded"
)

type MailchimpStatus string

const (
	MailchimpStatusNone          MailchimpStatus = ""
	MailchimpStatusSubscribed    MailchimpStatus = "subscribed"
	MailchimpStatusUnsubscribed  MailchimpStatus = "unsubscribed"
	MailchimpStatusCleaned       MailchimpStatus = "cleaned"
	MailchimpStatusPending       MailchimpStatus = "pending"
	MailchimpStatusTransactional MailchimpStatus = "transactional"
	MailchimpStatusArchived      MailchimpStatus = "archived"
)

type MemberSource string

const (
	SourceVimeo     MemberSource = "vimeo"
	SourceMailchimp MemberSource = "mailchimp"
	SourceBoth      MemberSource = "both"
)

// ====== CORE TYPES ======

// ConsolidatedMember merges a customer's state on Vimeo OTT and Mailchimp, keyed by email.
type ConsolidatedMember struct {
	Email           string          `json:"email"`
	Name            string          `json:"name,omitempty"`
	VimeoStatus     VimeoStatus     `json:"vimeoStatus"`
	VimeoProduct    string          `json:"vimeoProduct"`
	VimeoPlan       string          `json:"vimeoPlan"`
	VimeoJoinDate   *time.Time      `json:"vimeoJoinDate,omitempty"`
	MailchimpStatus MailchimpStatus `json:"mailchimpStatus"`
	MailchimpTags   []string        `json:"mailchimpTags"`
	MailchimpLists  []string        `json:"mailchimpLists"`
	Source          MemberSource    `json:"source"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// InVimeo reports whether the member has ever held a Vimeo OTT subscription.
func (m ConsolidatedMember) InVimeo() bool {
	return m.VimeoStatus != VimeoStatusNone
}

// InMailchimp reports whether the member has ever been on a Mailchimp audience.
func (m ConsolidatedMember) InMailchimp() bool {
	return m.MailchimpStatus != MailchimpStatusNone
}

// DeriveSource returns the source implied by which platforms know the member.
// The second return value is false when neither does.
func (m ConsolidatedMember) DeriveSource() (MemberSource, bool) {
	switch {
	case m.InVimeo() && m.InMailchimp():
		return SourceBoth, true
	case m.InVimeo():
		return SourceVimeo, true
	case m.InMailchimp():
		return SourceMailchimp, true
	default:
		return "", false
	}
}

// NormalizeEmail lower-cases and trims an address so it can be used as a member key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
