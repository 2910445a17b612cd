package classifier

import (
	"strings"

	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"
)

// Classification is the outcome of classifying one row. FeeBuckets lists
// each matched bucket once, in table order.
type Classification struct {
	FeeBuckets []Bucket
	DMVPremium bool
	Cash       bool
	CreditCard bool
}

// FeeBucket returns the first matched bucket, or BucketNone.
func (c Classification) FeeBucket() Bucket {
	if len(c.FeeBuckets) == 0 {
		return BucketNone
	}
	return c.FeeBuckets[0]
}

// Has reports whether the row matched b.
func (c Classification) Has(b Bucket) bool {
	for _, fb := range c.FeeBuckets {
		if fb == b {
			return true
		}
	}
	return false
}

// Options configures a Classifier.
type Options struct {
	TaxProducts []string
	Legacy      bool
}

// Classifier evaluates a MarkerSet against transaction rows. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	markers MarkerSet
}

// New builds a classifier. When the legacy marker set is selected, every
// marker that differs from the default set is logged as a warning.
func New(opts Options, logger logging.Logger) *Classifier {
	logger = logging.Component(logger, "classifier")

	markers := DefaultMarkers()
	if opts.Legacy {
		markers = LegacyMarkers()
		for _, d := range MarkerDiff(DefaultMarkers(), markers) {
			logger.WithFields(
				logging.F("bucket", string(d.Bucket)),
				logging.F("default_marker", d.Left),
				logging.F("legacy_marker", d.Right),
			).Warn("Legacy fee marker differs from default table")
		}
	}

	return &Classifier{markers: markers.WithTaxProducts(opts.TaxProducts)}
}

// NewDefault returns a classifier over the default marker table.
func NewDefault() *Classifier {
	return &Classifier{markers: DefaultMarkers()}
}

// Markers returns the table in use.
func (c *Classifier) Markers() MarkerSet {
	return c.markers
}

// Classify decides which buckets and payment columns a row contributes to.
// Every fee rule is evaluated, so a label carrying several markers lands in
// several buckets. The DMV premium rule and the payment method are evaluated
// independently.
func (c *Classifier) Classify(tx models.Transaction) Classification {
	var cls Classification
	for _, r := range c.markers.FeeRules {
		if r.matches(tx.Company, tx.Method) && !cls.Has(r.Bucket) {
			cls.FeeBuckets = append(cls.FeeBuckets, r.Bucket)
		}
	}
	cls.DMVPremium = c.markers.DMVPremium.matches(tx.Company)
	cls.Cash = strings.Contains(tx.Method, models.MethodCash)
	cls.CreditCard = strings.Contains(tx.Method, models.MethodCreditCard)
	return cls
}

// Accumulate adds the row's contribution to the raw (non-derived) fields of s.
func (c *Classifier) Accumulate(s *models.Summary, tx models.Transaction) Classification {
	cls := c.Classify(tx)
	sign := tx.Total.Sign()

	s.TransactionCount++
	if tx.IsNewBusiness() && tx.Total.IsPositive() {
		s.NbRwCount++
	}

	for _, bucket := range cls.FeeBuckets {
		switch bucket {
		case BucketNbRwFee:
			s.NbRwFee = s.NbRwFee.Add(tx.Fee)
		case BucketEnFee:
			s.EnFee = s.EnFee.Add(tx.Fee)
			s.EnCount += sign
		case BucketReissueFee:
			s.ReissueFee = s.ReissueFee.Add(tx.Fee)
			s.ReissueCount += sign
		case BucketRenewalFee:
			s.RenewalFee = s.RenewalFee.Add(tx.Fee)
			s.RenewalCount += sign
		case BucketPysFee:
			s.PysFee = s.PysFee.Add(tx.Fee)
			s.PysCount += sign
		case BucketRegistrationFee:
			s.RegistrationFee = s.RegistrationFee.Add(tx.Fee)
			s.DMVCount += sign
		case BucketConvenienceFee:
			s.ConvenienceFee = s.ConvenienceFee.Add(tx.Fee)
		case BucketTaxPrepFee:
			s.TaxPrepFee = s.TaxPrepFee.Add(tx.Fee)
			s.TaxPrepCount += sign
		}
	}

	if cls.DMVPremium {
		s.DMVPremium = s.DMVPremium.Add(tx.Premium)
	}

	if cls.Cash {
		s.CashPremium = s.CashPremium.Add(tx.Premium)
		s.CashFee = s.CashFee.Add(tx.Fee)
	}
	if cls.CreditCard {
		s.CreditPremium = s.CreditPremium.Add(tx.Premium)
		s.CreditFee = s.CreditFee.Add(tx.Fee)
		s.CreditPaymentTotal = s.CreditPaymentTotal.Add(tx.Total)
	}

	return cls
}
