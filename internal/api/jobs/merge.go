package jobs

import (
	"sort"
	"strings"

	"github.com/pblonline/ops-dashboard/internal/clients/mailchimp"
	"github.com/pblonline/ops-dashboard/internal/clients/vimeo"
	"github.com/pblonline/ops-dashboard/internal/types"
)

// memberIndex merges platform records into consolidated members by email.
type memberIndex map[string]*types.ConsolidatedMember

func newMemberIndex(existing []types.ConsolidatedMember) memberIndex {
	idx := make(memberIndex, len(existing))
	for i := range existing {
		m := existing[i]
		idx[types.NormalizeEmail(m.Email)] = &m
	}
	return idx
}

func (idx memberIndex) get(email string) *types.ConsolidatedMember {
	key := types.NormalizeEmail(email)
	m, ok := idx[key]
	if !ok {
		m = &types.ConsolidatedMember{Email: key}
		idx[key] = m
	}
	return m
}

func (idx memberIndex) clearVimeo() {
	for _, m := range idx {
		m.VimeoStatus = types.VimeoStatusNone
		m.VimeoProduct = ""
		m.VimeoPlan = ""
		m.VimeoJoinDate = nil
	}
}

func (idx memberIndex) clearMailchimp() {
	for _, m := range idx {
		m.MailchimpStatus = types.MailchimpStatusNone
		m.MailchimpTags = nil
		m.MailchimpLists = nil
	}
}

// applyVimeo sets the Vimeo columns. When an address has several customer
// records an enabled one wins, then the most recently updated.
func (idx memberIndex) applyVimeo(customers []vimeo.Customer, fallbackProduct string) {
	best := map[string]vimeo.Customer{}
	for _, c := range customers {
		key := types.NormalizeEmail(c.Email)
		if key == "" {
			continue
		}
		cur, ok := best[key]
		if !ok || preferCustomer(c, cur) {
			best[key] = c
		}
	}

	for email, c := range best {
		m := idx.get(email)
		m.VimeoStatus = types.VimeoStatus(strings.ToLower(c.Status))
		m.VimeoProduct = c.ProductName(fallbackProduct)
		m.VimeoPlan = c.Plan
		if !c.CreatedAt.IsZero() {
			joined := c.CreatedAt.UTC()
			m.VimeoJoinDate = &joined
		}
		if c.Name != "" {
			m.Name = c.Name
		}
	}
}

func preferCustomer(c, cur vimeo.Customer) bool {
	cEnabled := strings.EqualFold(c.Status, string(types.VimeoStatusEnabled))
	curEnabled := strings.EqualFold(cur.Status, string(types.VimeoStatusEnabled))
	if cEnabled != curEnabled {
		return cEnabled
	}
	return c.UpdatedAt.After(cur.UpdatedAt)
}

var mailchimpStatusRank = map[types.MailchimpStatus]int{
	types.MailchimpStatusSubscribed:    6,
	types.MailchimpStatusPending:       5,
	types.MailchimpStatusTransactional: 4,
	types.MailchimpStatusUnsubscribed:  3,
	types.MailchimpStatusCleaned:       2,
	types.MailchimpStatusArchived:      1,
}

// applyMailchimp adds one audience's members. Across audiences the most
// engaged status wins and tags are unioned.
func (idx memberIndex) applyMailchimp(list mailchimp.List, members []mailchimp.Member) {
	for _, mm := range members {
		if types.NormalizeEmail(mm.EmailAddress) == "" {
			continue
		}
		m := idx.get(mm.EmailAddress)

		status := types.MailchimpStatus(strings.ToLower(mm.Status))
		if mailchimpStatusRank[status] > mailchimpStatusRank[m.MailchimpStatus] {
			m.MailchimpStatus = status
		}
		m.MailchimpTags = appendUnique(m.MailchimpTags, mm.TagNames()...)
		m.MailchimpLists = appendUnique(m.MailchimpLists, list.Name)
		if m.Name == "" && mm.FullName != "" {
			m.Name = mm.FullName
		}
	}
}

// members returns every member known to at least one platform, sorted by
// email, with source derived.
func (idx memberIndex) members() []types.ConsolidatedMember {
	out := make([]types.ConsolidatedMember, 0, len(idx))
	for _, m := range idx {
		source, ok := m.DeriveSource()
		if !ok {
			continue
		}
		m.Source = source
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		seen := false
		for _, d := range dst {
			if d == v {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, v)
		}
	}
	return dst
}
