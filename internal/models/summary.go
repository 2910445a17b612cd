package models

import "github.com/shopspring/decimal"

// Summary is the per-report aggregate of washed transactions.
type Summary struct {
	NbRwCount        int `json:"nb_rw_count" yaml:"nb_rw_count"`
	DMVCount         int `json:"dmv_count" yaml:"dmv_count"`
	EnCount          int `json:"en_count" yaml:"en_count"`
	ReissueCount     int `json:"reissue_count" yaml:"reissue_count"`
	RenewalCount     int `json:"renewal_count" yaml:"renewal_count"`
	PysCount         int `json:"pys_count" yaml:"pys_count"`
	TaxPrepCount     int `json:"tax_prep_count" yaml:"tax_prep_count"`
	TransactionCount int `json:"transaction_count" yaml:"transaction_count"`

	CashPremium        decimal.Decimal `json:"cash_premium" yaml:"cash_premium"`
	CashFee            decimal.Decimal `json:"cash_fee" yaml:"cash_fee"`
	CreditPremium      decimal.Decimal `json:"credit_premium" yaml:"credit_premium"`
	CreditFee          decimal.Decimal `json:"credit_fee" yaml:"credit_fee"`
	CreditPaymentTotal decimal.Decimal `json:"credit_payment_total" yaml:"credit_payment_total"`
	NbRwFee            decimal.Decimal `json:"nb_rw_fee" yaml:"nb_rw_fee"`
	EnFee              decimal.Decimal `json:"en_fee" yaml:"en_fee"`
	ReissueFee         decimal.Decimal `json:"reissue_fee" yaml:"reissue_fee"`
	RenewalFee         decimal.Decimal `json:"renewal_fee" yaml:"renewal_fee"`
	PysFee             decimal.Decimal `json:"pys_fee" yaml:"pys_fee"`
	TaxPrepFee         decimal.Decimal `json:"tax_prep_fee" yaml:"tax_prep_fee"`
	RegistrationFee    decimal.Decimal `json:"registration_fee" yaml:"registration_fee"`
	ConvenienceFee     decimal.Decimal `json:"convenience_fee" yaml:"convenience_fee"`
	DMVPremium         decimal.Decimal `json:"dmv_premium" yaml:"dmv_premium"`

	TotalPremium       decimal.Decimal `json:"total_premium" yaml:"total_premium"`
	TotalFee           decimal.Decimal `json:"total_fee" yaml:"total_fee"`
	TotalCreditPayment decimal.Decimal `json:"total_credit_payment" yaml:"total_credit_payment"`
	NbRwCorpFee        decimal.Decimal `json:"nb_rw_corp_fee" yaml:"nb_rw_corp_fee"`
	FeeRoyalty         decimal.Decimal `json:"fee_royalty" yaml:"fee_royalty"`
	TotalReferralsPaid decimal.Decimal `json:"total_referrals_paid" yaml:"total_referrals_paid"`
	Expenses           decimal.Decimal `json:"expenses" yaml:"expenses"`

	TrustDeposit   decimal.Decimal `json:"trust_deposit" yaml:"trust_deposit"`
	DMVDeposit     decimal.Decimal `json:"dmv_deposit" yaml:"dmv_deposit"`
	RevenueDeposit decimal.Decimal `json:"revenue_deposit" yaml:"revenue_deposit"`
}

func (s *Summary) counts() []*int {
	return []*int{
		&s.NbRwCount, &s.DMVCount, &s.EnCount, &s.ReissueCount,
		&s.RenewalCount, &s.PysCount, &s.TaxPrepCount, &s.TransactionCount,
	}
}

// amounts lists every money field that is not a deposit.
func (s *Summary) amounts() []*decimal.Decimal {
	return []*decimal.Decimal{
		&s.CashPremium, &s.CashFee, &s.CreditPremium, &s.CreditFee, &s.CreditPaymentTotal,
		&s.NbRwFee, &s.EnFee, &s.ReissueFee, &s.RenewalFee, &s.PysFee, &s.TaxPrepFee,
		&s.RegistrationFee, &s.ConvenienceFee, &s.DMVPremium,
		&s.TotalPremium, &s.TotalFee, &s.TotalCreditPayment, &s.NbRwCorpFee,
		&s.FeeRoyalty, &s.TotalReferralsPaid, &s.Expenses,
	}
}

func (s *Summary) deposits() []*decimal.Decimal {
	return []*decimal.Decimal{&s.TrustDeposit, &s.DMVDeposit, &s.RevenueDeposit}
}

// Plus returns the field-by-field sum of two summaries, deposits included.
func (s Summary) Plus(o Summary) Summary {
	out := s
	oc, oa, od := o.counts(), o.amounts(), o.deposits()
	for i, c := range out.counts() {
		*c += *oc[i]
	}
	for i, a := range out.amounts() {
		*a = a.Add(*oa[i])
	}
	for i, d := range out.deposits() {
		*d = d.Add(*od[i])
	}
	return out
}

// MinusExceptDeposits subtracts o from s on every count and money field
// except the three deposits, which are carried from s unchanged.
func (s Summary) MinusExceptDeposits(o Summary) Summary {
	out := s
	oc, oa := o.counts(), o.amounts()
	for i, c := range out.counts() {
		*c -= *oc[i]
	}
	for i, a := range out.amounts() {
		*a = a.Sub(*oa[i])
	}
	return out
}

// Equal compares two summaries by value.
func (s Summary) Equal(o Summary) bool {
	sc, sa, sd := s.counts(), s.amounts(), s.deposits()
	oc, oa, od := o.counts(), o.amounts(), o.deposits()
	for i := range sc {
		if *sc[i] != *oc[i] {
			return false
		}
	}
	for i := range sa {
		if !sa[i].Equal(*oa[i]) {
			return false
		}
	}
	for i := range sd {
		if !sd[i].Equal(*od[i]) {
			return false
		}
	}
	return true
}
