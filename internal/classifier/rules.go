// Package classifier assigns transaction rows to fee buckets and payment
// columns using an ordered table of substring markers.
package classifier

import (
	"strings"

	"fjacquet/eod-recon/internal/models"
)

// Bucket names a summary field a row can contribute to.
type Bucket string

const (
	BucketNone            Bucket = ""
	BucketNbRwFee         Bucket = "nb_rw_fee"
	BucketEnFee           Bucket = "en_fee"
	BucketReissueFee      Bucket = "reissue_fee"
	BucketRenewalFee      Bucket = "renewal_fee"
	BucketPysFee          Bucket = "pys_fee"
	BucketRegistrationFee Bucket = "registration_fee"
	BucketConvenienceFee  Bucket = "convenience_fee"
	BucketTaxPrepFee      Bucket = "tax_prep_fee"
)

// Rule matches when the fee label contains Marker and, if AnyOf is set, at
// least one of AnyOf. Rows whose method contains ExcludeMethod never match.
// Matching is case-sensitive.
type Rule struct {
	Bucket        Bucket
	Marker        string
	AnyOf         []string
	ExcludeMethod string
}

func (r Rule) matches(label, method string) bool {
	if r.ExcludeMethod != "" && strings.Contains(method, r.ExcludeMethod) {
		return false
	}
	if !strings.Contains(label, r.Marker) {
		return false
	}
	if len(r.AnyOf) == 0 {
		return true
	}
	for _, alt := range r.AnyOf {
		if strings.Contains(label, alt) {
			return true
		}
	}
	return false
}

// PremiumRule routes a row's premium to dmv_premium when the label contains
// every Require marker and none of the Exclude markers.
type PremiumRule struct {
	Require []string
	Exclude []string
}

func (p PremiumRule) matches(label string) bool {
	if len(p.Require) == 0 {
		return false
	}
	for _, m := range p.Require {
		if !strings.Contains(label, m) {
			return false
		}
	}
	for _, m := range p.Exclude {
		if strings.Contains(label, m) {
			return false
		}
	}
	return true
}

// MarkerSet is a complete, ordered classification table.
type MarkerSet struct {
	Name       string
	FeeRules   []Rule
	DMVPremium PremiumRule
}

const (
	markerConvenience       = "Convenience Fee"
	markerLegacyConvenience = "Convenience Fee (c"
	markerLegacyDMV         = "Dmv - Registration S"
)

func feeRules(convenience string) []Rule {
	return []Rule{
		{Bucket: BucketNbRwFee, Marker: "Broker Fee"},
		{Bucket: BucketEnFee, Marker: "Endorsement Fee"},
		{Bucket: BucketReissueFee, Marker: "Reinstatement Fee"},
		{Bucket: BucketRenewalFee, Marker: "Renewal Fee"},
		{Bucket: BucketPysFee, Marker: "Payment Fee"},
		{Bucket: BucketRegistrationFee, Marker: "Registration Fee"},
		{Bucket: BucketConvenienceFee, Marker: convenience},
		{Bucket: BucketTaxPrepFee, Marker: "Tax", AnyOf: []string{"Prep", "Estimate"}, ExcludeMethod: models.MethodWire},
	}
}

// DefaultMarkers is the authoritative marker table.
func DefaultMarkers() MarkerSet {
	return MarkerSet{
		Name:       "default",
		FeeRules:   feeRules(markerConvenience),
		DMVPremium: PremiumRule{Require: []string{"DMV", "Registration"}, Exclude: []string{"Fee"}},
	}
}

// LegacyMarkers reproduces the truncated markers used by the older office
// report screen. Kept selectable so historical reports can be re-derived.
func LegacyMarkers() MarkerSet {
	return MarkerSet{
		Name:       "legacy",
		FeeRules:   feeRules(markerLegacyConvenience),
		DMVPremium: PremiumRule{Require: []string{markerLegacyDMV}},
	}
}

// WithTaxProducts returns a copy of the set with one extra tax-prep rule per
// product name, placed right after the generic tax-prep rule.
func (m MarkerSet) WithTaxProducts(products []string) MarkerSet {
	out := m
	out.FeeRules = make([]Rule, 0, len(m.FeeRules)+len(products))
	out.FeeRules = append(out.FeeRules, m.FeeRules...)
	for _, p := range products {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out.FeeRules = append(out.FeeRules, Rule{Bucket: BucketTaxPrepFee, Marker: p, ExcludeMethod: models.MethodWire})
	}
	return out
}

// MarkerMismatch describes a bucket whose markers differ between two sets.
type MarkerMismatch struct {
	Bucket Bucket
	Left   string
	Right  string
}

// MarkerDiff lists the buckets whose markers differ between a and b.
// The DMV premium rule is reported under the "dmv_premium" bucket.
func MarkerDiff(a, b MarkerSet) []MarkerMismatch {
	var diffs []MarkerMismatch

	left := markersByBucket(a)
	right := markersByBucket(b)
	seen := make(map[Bucket]bool)
	for _, r := range append(append([]Rule(nil), a.FeeRules...), b.FeeRules...) {
		if seen[r.Bucket] {
			continue
		}
		seen[r.Bucket] = true
		if left[r.Bucket] != right[r.Bucket] {
			diffs = append(diffs, MarkerMismatch{Bucket: r.Bucket, Left: left[r.Bucket], Right: right[r.Bucket]})
		}
	}

	dmvLeft, dmvRight := describePremium(a.DMVPremium), describePremium(b.DMVPremium)
	if dmvLeft != dmvRight {
		diffs = append(diffs, MarkerMismatch{Bucket: "dmv_premium", Left: dmvLeft, Right: dmvRight})
	}
	return diffs
}

func markersByBucket(m MarkerSet) map[Bucket]string {
	out := make(map[Bucket]string)
	for _, r := range m.FeeRules {
		desc := r.Marker
		if len(r.AnyOf) > 0 {
			desc += "+(" + strings.Join(r.AnyOf, "|") + ")"
		}
		if prev, ok := out[r.Bucket]; ok {
			desc = prev + ", " + desc
		}
		out[r.Bucket] = desc
	}
	return out
}

func describePremium(p PremiumRule) string {
	desc := strings.Join(p.Require, "+")
	if len(p.Exclude) > 0 {
		desc += " -" + strings.Join(p.Exclude, " -")
	}
	return desc
}
