// Package reconcile compares a Matrix upload against submitted EOD reports to
// find agents who did not submit and receipts missing from their reports.
package reconcile

import (
	"sort"
	"strings"

	"fjacquet/eod-recon/internal/dateutils"
	"fjacquet/eod-recon/internal/eod"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/textutils"

	"github.com/shopspring/decimal"
)

// Input is everything one reconciliation run needs. From and To bound the
// report dates considered; empty bounds are open.
type Input struct {
	Transactions []models.Transaction
	From         string
	To           string
	Reports      []models.Report
	Profiles     []models.Profile
	Mappings     []models.NameMapping
}

// Result of a run. Groups holds every overlay group in key order; Flagged
// holds the ones that are missing an EOD or carry discrepancies.
type Result struct {
	Groups          []models.MatrixOverlayGroup        `json:"groups"`
	Flagged         []models.MatrixOverlayGroup        `json:"flagged"`
	MissingReceipts map[string][]models.MissingReceipt `json:"missing_receipts"`
	WashedReceipts  []string                           `json:"washed_receipts"`
	SkippedRows     int                                `json:"skipped_rows"`
}

// Reconciler runs the cross-source comparison.
type Reconciler struct {
	engine *eod.Engine
	logger logging.Logger
}

// New creates a Reconciler.
func New(engine *eod.Engine, logger logging.Logger) *Reconciler {
	if engine == nil {
		engine = eod.NewEngine(nil)
	}
	return &Reconciler{engine: engine, logger: logging.Component(logger, "reconcile")}
}

type identity struct {
	email  string
	method string
}

// Reconcile performs a full run. It is a pure computation over its input.
func (r *Reconciler) Reconcile(in Input) Result {
	result := Result{MissingReceipts: make(map[string][]models.MissingReceipt)}

	inRange := make([]models.Transaction, 0, len(in.Transactions))
	for _, tx := range in.Transactions {
		if dateutils.InRange(tx.ReportDate, in.From, in.To) {
			inRange = append(inRange, tx)
		}
	}
	result.SkippedRows = len(in.Transactions) - len(inRange)

	washed, washedReceipts := eod.Wash(inRange)
	result.WashedReceipts = washedReceipts

	directory := buildDirectory(in.Profiles, in.Mappings)
	names := profileNames(in.Profiles)
	byKey := make(map[models.ReportKey]models.Report)
	byDayOffice := make(map[[2]string][]models.Report)
	for _, rep := range in.Reports {
		byKey[rep.Key()] = rep
		k := [2]string{rep.ReportDate, rep.Office}
		byDayOffice[k] = append(byDayOffice[k], rep)
	}
	for k := range byDayOffice {
		reps := byDayOffice[k]
		sort.Slice(reps, func(i, j int) bool {
			if reps[i].AgentEmail != reps[j].AgentEmail {
				return reps[i].AgentEmail < reps[j].AgentEmail
			}
			return reps[i].ID < reps[j].ID
		})
	}

	for _, g := range group(washed) {
		g.Summary = r.engine.Aggregate(g.Transactions, decimal.Zero, nil)

		var matched *models.Report
		candidates := byDayOffice[[2]string{g.Key.ReportDate, g.Key.Office}]
		if id, ok := directory[g.Key.NormalizedCSR]; ok {
			g.ResolvedEmail = id.email
			g.MatchMethod = id.method
			if rep, ok := byKey[models.NewReportKey(id.email, g.Key.Office, g.Key.ReportDate)]; ok {
				matched = &rep
				g.MatchScore = ScoreExact
			} else {
				matched = linkCandidate(&g, candidates, names)
			}
		} else {
			g.IsUnmappedName = true
			g.MatchMethod = models.MatchNone
			if matched = linkCandidate(&g, candidates, names); matched != nil {
				g.MatchMethod = models.MatchFuzzy
				g.ResolvedEmail = matched.AgentEmail
			}
		}

		if matched == nil {
			g.IsMissingEOD = true
		} else {
			g.MatchedReportID = matched.ID
			g.MissingReceipts = missingReceipts(g.Transactions, matched.RawTransactions)
			if len(g.MissingReceipts) > 0 {
				result.MissingReceipts[matched.ID] = append(result.MissingReceipts[matched.ID], g.MissingReceipts...)
			}
		}

		r.logger.WithFields(
			logging.F(logging.FieldDate, g.Key.ReportDate),
			logging.F(logging.FieldOffice, g.Key.Office),
			logging.F(logging.FieldCSRName, g.CSRName),
			logging.F("match_method", g.MatchMethod),
			logging.F(logging.FieldScore, g.MatchScore),
			logging.F("missing_eod", g.IsMissingEOD),
		).Debug("Resolved overlay group")

		result.Groups = append(result.Groups, g)
		if g.NeedsReview() {
			result.Flagged = append(result.Flagged, g)
		}
	}

	r.logger.WithFields(
		logging.F("groups", len(result.Groups)),
		logging.F("flagged", len(result.Flagged)),
		logging.F("washed_receipts", len(washedReceipts)),
		logging.F("skipped_rows", result.SkippedRows),
	).Info("Reconciliation complete")

	return result
}

// buildDirectory maps normalized names to emails. Saved name mappings take
// precedence over profile names.
func buildDirectory(profiles []models.Profile, mappings []models.NameMapping) map[string]identity {
	dir := make(map[string]identity, len(profiles)+len(mappings))
	for _, p := range profiles {
		if n := textutils.NormalizeName(p.FullName); n != "" && p.Email != "" {
			dir[n] = identity{email: p.Email, method: models.MatchDirectory}
		}
	}
	for _, m := range mappings {
		if n := textutils.NormalizeName(m.CSVName); n != "" && m.AgentEmail != "" {
			dir[n] = identity{email: m.AgentEmail, method: models.MatchMapping}
		}
	}
	return dir
}

func profileNames(profiles []models.Profile) map[string]string {
	out := make(map[string]string, len(profiles))
	for _, p := range profiles {
		out[strings.ToLower(strings.TrimSpace(p.Email))] = p.FullName
	}
	return out
}

// candidateName is the name a stored report is scored by: the profile name,
// then the name on the report, then the local part of the email.
func candidateName(rep models.Report, names map[string]string) string {
	if n := names[strings.ToLower(strings.TrimSpace(rep.AgentEmail))]; n != "" {
		return n
	}
	if rep.AgentName != "" {
		return rep.AgentName
	}
	local, _, _ := strings.Cut(rep.AgentEmail, "@")
	return strings.NewReplacer(".", " ", "_", " ").Replace(local)
}

// bestCandidate returns the highest-scoring report. Ties keep the earlier
// candidate in the sorted slice.
func bestCandidate(csrName string, candidates []models.Report, names map[string]string) (*models.Report, int) {
	var best *models.Report
	bestScore := -1
	for i := range candidates {
		score := NameScore(csrName, candidateName(candidates[i], names))
		if score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, bestScore
}

// linkCandidate searches the reports filed for the group's day and office,
// whoever filed them. A score at or above ScoreAutoLink links the report;
// a lower non-zero score is recorded as a collision.
func linkCandidate(g *models.MatrixOverlayGroup, candidates []models.Report, names map[string]string) *models.Report {
	best, score := bestCandidate(g.CSRName, candidates, names)
	switch {
	case best == nil:
		return nil
	case score >= ScoreAutoLink:
		g.MatchScore = score
		return best
	case score > 0:
		g.CollisionReportID = best.ID
		g.CollisionReportName = candidateName(*best, names)
		g.CollisionScore = score
	}
	return nil
}

func group(txs []models.Transaction) []models.MatrixOverlayGroup {
	index := make(map[models.OverlayKey]int)
	var groups []models.MatrixOverlayGroup
	for _, tx := range txs {
		key := models.OverlayKey{
			ReportDate:    tx.ReportDate,
			Office:        tx.Office,
			NormalizedCSR: textutils.NormalizeName(tx.CSRName),
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, models.MatrixOverlayGroup{Key: key, CSRName: strings.TrimSpace(tx.CSRName)})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Key, groups[j].Key
		if a.ReportDate != b.ReportDate {
			return a.ReportDate < b.ReportDate
		}
		if a.Office != b.Office {
			return a.Office < b.Office
		}
		return a.NormalizedCSR < b.NormalizedCSR
	})
	return groups
}
