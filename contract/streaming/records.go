package streaming

import (
	"fmt"

	"go.dedis.ch/streamchain/contract/value"
)

// Content is a published item
type Content struct {
	Creator       value.Principal
	Owner         value.Principal
	Title         string
	Description   string
	Price         uint64
	IsNFT         bool
	Category      string
	IsPremium     bool
	TotalRating   uint64
	RatingCount   uint64
	PurchaseCount uint64
	CreatedAt     uint64
}

func (c Content) Tuple() value.Tuple {
	return value.Tuple{
		"creator":        c.Creator,
		"owner":          c.Owner,
		"title":          value.UTF8(c.Title),
		"description":    value.UTF8(c.Description),
		"price":          value.UInt(c.Price),
		"is-nft":         value.Bool(c.IsNFT),
		"category":       value.UTF8(c.Category),
		"is-premium":     value.Bool(c.IsPremium),
		"total-rating":   value.UInt(c.TotalRating),
		"rating-count":   value.UInt(c.RatingCount),
		"purchase-count": value.UInt(c.PurchaseCount),
		"created-at":     value.UInt(c.CreatedAt),
	}
}

func contentFromTuple(t value.Tuple) (Content, error) {
	d := decoder{t: t}
	c := Content{
		Creator:       d.principal("creator"),
		Owner:         d.principal("owner"),
		Title:         d.str("title"),
		Description:   d.str("description"),
		Price:         d.uint("price"),
		IsNFT:         d.bool("is-nft"),
		Category:      d.str("category"),
		IsPremium:     d.bool("is-premium"),
		TotalRating:   d.uint("total-rating"),
		RatingCount:   d.uint("rating-count"),
		PurchaseCount: d.uint("purchase-count"),
		CreatedAt:     d.uint("created-at"),
	}
	return c, d.err
}

// Subscription of Subscriber to Creator
type Subscription struct {
	Duration uint64
	Type     string
	Start    uint64
	Expiry   uint64
	Active   bool
	Paid     uint64
}

// IsActive holds while the flag is set and height is below expiry
func (s Subscription) IsActive(height uint64) bool {
	return s.Active && height < s.Expiry
}

func (s Subscription) Tuple() value.Tuple {
	return value.Tuple{
		"duration":          value.UInt(s.Duration),
		"subscription-type": value.UTF8(s.Type),
		"start":             value.UInt(s.Start),
		"expiry":            value.UInt(s.Expiry),
		"active":            value.Bool(s.Active),
		"paid":              value.UInt(s.Paid),
	}
}

func subscriptionFromTuple(t value.Tuple) (Subscription, error) {
	d := decoder{t: t}
	s := Subscription{
		Duration: d.uint("duration"),
		Type:     d.str("subscription-type"),
		Start:    d.uint("start"),
		Expiry:   d.uint("expiry"),
		Active:   d.bool("active"),
		Paid:     d.uint("paid"),
	}
	return s, d.err
}

// Playlist owned by one principal
type Playlist struct {
	Name      string
	IsPublic  bool
	Contents  []uint64
	CreatedAt uint64
}

func (p Playlist) Tuple() value.Tuple {
	contents := make(value.List, 0, len(p.Contents))
	for _, id := range p.Contents {
		contents = append(contents, value.UInt(id))
	}
	return value.Tuple{
		"name":       value.UTF8(p.Name),
		"is-public":  value.Bool(p.IsPublic),
		"contents":   contents,
		"created-at": value.UInt(p.CreatedAt),
	}
}

func (p Playlist) indexOf(contentID uint64) int {
	for i, id := range p.Contents {
		if id == contentID {
			return i
		}
	}
	return -1
}

func playlistFromTuple(t value.Tuple) (Playlist, error) {
	d := decoder{t: t}
	p := Playlist{
		Name:      d.str("name"),
		IsPublic:  d.bool("is-public"),
		CreatedAt: d.uint("created-at"),
	}
	for _, v := range d.list("contents") {
		id, err := value.AsUInt(v)
		if err != nil {
			return p, fmt.Errorf("playlist contents: %w", err)
		}
		p.Contents = append(p.Contents, id)
	}
	return p, d.err
}

// decoder reads tuple fields, keeping the first error
type decoder struct {
	t   value.Tuple
	err error
}

func (d *decoder) field(name string) value.Value {
	if d.err != nil {
		return nil
	}
	v, ok := d.t[name]
	if !ok {
		d.err = fmt.Errorf("missing field %s", name)
	}
	return v
}

func (d *decoder) check(name string, err error) {
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("field %s: %w", name, err)
	}
}

func (d *decoder) uint(name string) uint64 {
	v := d.field(name)
	if d.err != nil {
		return 0
	}
	u, err := value.AsUInt(v)
	d.check(name, err)
	return u
}

func (d *decoder) bool(name string) bool {
	v := d.field(name)
	if d.err != nil {
		return false
	}
	b, err := value.AsBool(v)
	d.check(name, err)
	return b
}

func (d *decoder) str(name string) string {
	v := d.field(name)
	if d.err != nil {
		return ""
	}
	s, err := value.AsString(v)
	d.check(name, err)
	return s
}

func (d *decoder) principal(name string) value.Principal {
	v := d.field(name)
	if d.err != nil {
		return ""
	}
	p, err := value.AsPrincipal(v)
	d.check(name, err)
	return p
}

func (d *decoder) list(name string) value.List {
	v := d.field(name)
	if d.err != nil {
		return nil
	}
	l, err := value.AsList(v)
	d.check(name, err)
	return l
}
