// Package reconcile turns the comparison held by a DiffStore into a plan of
// actions and a report that can be stored or shipped.
//
// A plan is computed from the point of view of one store, the source of
// truth, against its mirror, the target:
//
//   - rows only in the source become insert actions
//   - rows in both with different values become update actions
//   - rows only in the target become delete actions
//
// Summary counts always cover every row. Options decide which action kinds
// are listed and how many.
//
// # Usage
//
//	plan, err := reconcile.BuildPlan(ctx, ds.StoreA(), reconcile.PlanOptions{
//	    DoInsert: true, DoUpdate: true, DoDelete: true,
//	})
//	report := reconcile.NewReport(plan)
//	err = report.WriteFile("report.json")
package reconcile
