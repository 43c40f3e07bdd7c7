package viva

import (
	"encoding/json"
	"strconv"
	"time"
)

// FieldAbsent is the sentinel the portal operators expect to see in the
// sheet when a listing field is missing upstream.
const FieldAbsent = "无此字段"

const createdLayout = "2006-01-02 15:04:05"

// ListingEntry is one row of the order listing page.
type ListingEntry struct {
	OriginalID string
	UserName   string
	FirstName  string
	LastName   string
	Number     string
	Created    string
	// 0 = open, 1 = closed, nil = unspecified
	Finished *int
}

// CreatedTime parses the portal timestamp. ok is false when the field is
// missing or not in the portal's format.
func (e ListingEntry) CreatedTime() (time.Time, bool) {
	t, err := time.Parse(createdLayout, e.Created)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// OrderDetail is the per-order document embedded in the detail page.
type OrderDetail struct {
	PhoneCell   string
	PhoneHome   string
	PhoneOffice string
	Items       []LineItem
}

// LineItem is one product line within an order. Quantity fields keep the
// upstream string verbatim, the sheet shows them as-is.
type LineItem struct {
	VendorPLU  string
	VendorName string
	Qty        string
	QtyOnHand  string
}

// QtyValue parses Qty as a float, non-numeric values count as 0.
func (li LineItem) QtyValue() float64 {
	return floatOrZero(li.Qty)
}

// QtyOnHandValue parses QtyOnHand as a float, non-numeric values count as 0.
func (li LineItem) QtyOnHandValue() float64 {
	return floatOrZero(li.QtyOnHand)
}

func floatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// flexString tolerates upstream fields that flip between JSON strings and
// numbers across portal releases.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		err := json.Unmarshal(b, &s)
		if err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	err := json.Unmarshal(b, &n)
	if err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type listingRecord struct {
	OriginalID *flexString `json:"OriginalID"`
	UserName   *string     `json:"UserName"`
	FirstName  *string     `json:"FirstName"`
	LastName   *string     `json:"LastName"`
	Number     *flexString `json:"Number"`
	Created    *string     `json:"Created"`
	Finished   *int        `json:"finished"`
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func flexOr(s *flexString, fallback string) string {
	if s == nil {
		return fallback
	}
	return string(*s)
}

func (r listingRecord) toEntry() (ListingEntry, bool) {
	if r.OriginalID == nil || *r.OriginalID == "" {
		return ListingEntry{}, false
	}
	return ListingEntry{
		OriginalID: string(*r.OriginalID),
		UserName:   stringOr(r.UserName, FieldAbsent),
		FirstName:  stringOr(r.FirstName, FieldAbsent),
		LastName:   stringOr(r.LastName, FieldAbsent),
		Number:     flexOr(r.Number, FieldAbsent),
		Created:    stringOr(r.Created, ""),
		Finished:   r.Finished,
	}, true
}

type detailRecord struct {
	PhoneCell   *flexString `json:"PhoneCell"`
	PhoneHome   *flexString `json:"PhoneHome"`
	PhoneOffice *flexString `json:"PhoneOffice"`
	Items       []struct {
		VendorPLU  *flexString `json:"VendorPLU"`
		VendorName *string     `json:"VendorName"`
		Qty        *flexString `json:"Qty"`
		QtyOnHand  *flexString `json:"Qty_OH"`
	} `json:"items"`
}

func (r detailRecord) toDetail() OrderDetail {
	detail := OrderDetail{
		PhoneCell:   flexOr(r.PhoneCell, ""),
		PhoneHome:   flexOr(r.PhoneHome, ""),
		PhoneOffice: flexOr(r.PhoneOffice, ""),
	}
	for _, item := range r.Items {
		detail.Items = append(detail.Items, LineItem{
			VendorPLU:  flexOr(item.VendorPLU, ""),
			VendorName: stringOr(item.VendorName, ""),
			Qty:        flexOr(item.Qty, ""),
			QtyOnHand:  flexOr(item.QtyOnHand, ""),
		})
	}
	return detail
}
