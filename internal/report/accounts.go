package report

import (
	"context"

	"github.com/asesorix/modelo111/internal/ports"
)

const (
	// SpecialIRPF is the special-account classification grouping the IRPF
	// purchases/retentions subaccounts in the chart of accounts.
	SpecialIRPF = "IRPFPR"

	// PayrollPrefix selects the wage-expense subaccounts (group 640 of the
	// Spanish general chart of accounts) whose debits carry the salary
	// taxable base.
	PayrollPrefix = "640"
)

// accountSets holds the two subaccount id sets one aggregation run works
// with. Membership only; descriptions are fetched separately when a recipient
// is first seen.
type accountSets struct {
	retention map[int64]bool
	payroll   map[int64]bool
}

func (s *accountSets) retentionIDs() []int64 { return keys(s.retention) }
func (s *accountSets) payrollIDs() []int64   { return keys(s.payroll) }

func keys(set map[int64]bool) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// buildAccountSets collects the subaccounts relevant to retention reporting
// for one fiscal year:
//
//  1. every subaccount under the IRPF special classification, and
//  2. for each configured retention rule, its accrual (purchase-side) and
//     withholding (sales-side) subaccounts, when resolvable.
//
// Unconfigured classifications and unresolvable rule subaccounts contribute
// nothing; an empty set is a valid outcome, not an error. The payroll set is
// built independently from the fixed code prefix.
func buildAccountSets(ctx context.Context, repo ports.LedgerRepository, fiscalYear string) (*accountSets, error) {
	sets := &accountSets{
		retention: map[int64]bool{},
		payroll:   map[int64]bool{},
	}

	special, err := repo.SubaccountsBySpecial(ctx, fiscalYear, SpecialIRPF)
	if err != nil {
		return nil, err
	}
	for _, sub := range special {
		sets.retention[sub.ID] = true
	}

	rules, err := repo.RetentionRules(ctx)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		addRuleSubaccount(ctx, repo, fiscalYear, rule.AccrualSubaccount, sets.retention)
		addRuleSubaccount(ctx, repo, fiscalYear, rule.WithholdingSubaccount, sets.retention)
	}

	payroll, err := repo.SubaccountsByPrefix(ctx, fiscalYear, PayrollPrefix)
	if err != nil {
		return nil, err
	}
	for _, sub := range payroll {
		sets.payroll[sub.ID] = true
	}

	return sets, nil
}

// addRuleSubaccount resolves one rule subaccount code and adds it to the set.
// Empty codes and codes that do not exist in this fiscal year are skipped.
func addRuleSubaccount(ctx context.Context, repo ports.LedgerRepository, fiscalYear, code string, set map[int64]bool) {
	if code == "" {
		return
	}
	sub, err := repo.SubaccountByCode(ctx, fiscalYear, code)
	if err != nil || sub == nil {
		return
	}
	set[sub.ID] = true
}
