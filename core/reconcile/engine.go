package reconcile

import (
	"context"
	"fmt"

	"datadiff/core/diff"
)

// BuildPlan compares source with its mirror and plans the actions that would
// make the mirror equal to source. Actions follow the order of the change
// queries: inserts and updates in source order, then deletes in target order.
func BuildPlan(ctx context.Context, source *diff.Store, opts PlanOptions) (*Plan, error) {
	target := source.Mirror()
	s := source.Schema()

	plan := &Plan{
		Source:      source.Label(),
		Target:      target.Label(),
		KeyFields:   s.KeyNames(),
		ValueFields: s.ValueNames(),
		Actions:     []Action{},
	}

	var err error
	if plan.Summary.SourceRows, err = source.Count(ctx); err != nil {
		return nil, err
	}
	if plan.Summary.TargetRows, err = target.Count(ctx); err != nil {
		return nil, err
	}

	rows := source.NewOrChangedOrMissingRows(ctx)
	for _, row := range rows.All() {
		action, listed, err := plan.tally(row, opts)
		if err != nil {
			return nil, err
		}
		if listed {
			plan.Actions = append(plan.Actions, action)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("build plan: %w", err)
	}

	plan.Summary.Unchanged = plan.Summary.SourceRows - plan.Summary.New - plan.Summary.Changed
	return plan, nil
}

// tally counts row in the summary and reports whether opts list it.
func (p *Plan) tally(row *diff.Row, opts PlanOptions) (Action, bool, error) {
	action := Action{Key: row.KeyData(), Text: row.String()}

	switch row.Kind() {
	case diff.RowNew:
		p.Summary.New++
		if !opts.DoInsert || capped(p.Summary.InsertActions, opts.Limit) {
			return Action{}, false, nil
		}
		p.Summary.InsertActions++
		action.Type = ActionInsert
		action.Data = row.Data()

	case diff.RowChanged:
		p.Summary.Changed++
		if !opts.DoUpdate || capped(p.Summary.UpdateActions, opts.Limit) {
			return Action{}, false, nil
		}
		p.Summary.UpdateActions++
		formatted, err := row.DiffFormatted(p.ValueFields, diff.DefaultFormat)
		if err != nil {
			return Action{}, false, err
		}
		action.Type = ActionUpdate
		action.Diff = formatted
		action.Changes = row.Diff(p.ValueFields...).Map()
		action.Data = row.Data()

	case diff.RowMissing:
		p.Summary.Missing++
		if !opts.DoDelete || capped(p.Summary.DeleteActions, opts.Limit) {
			return Action{}, false, nil
		}
		p.Summary.DeleteActions++
		action.Type = ActionDelete
		action.Key = row.Foreign().KeyData()
		action.Data = row.Foreign().Data()

	default:
		return Action{}, false, nil
	}
	return action, true, nil
}

func capped(n, limit int) bool {
	return limit > 0 && n >= limit
}
