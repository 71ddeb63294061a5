// Package harness runs YAML scenarios against the experience ledger.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: ongoing_position
//	description: "An open-ended record is measured against today"
//	today: "2023-06-20"
//	steps:
//	  - action: add
//	    input: { companyName: Initech, position: Developer, joinDate: "2023-06-15" }
//	  - action: add
//	    input: { companyName: Acme, position: QA, joinDate: "2024-01-01" }
//	    expect:
//	      error: validation
//	      message: cannot be after
//	  - action: update
//	    ref: 1
//	    input: { companyName: Initech, position: Lead, joinDate: "2023-06-15" }
//	assertions:
//	  - type: record_count
//	    count: 1
//	  - type: duration
//	    ref: 1
//	    expect: { years: 0, months: 0, days: 5 }
//	  - type: total_text
//	    text: "0 months, and 5 days"
//
// # Steps
//
// Actions are add, update, edit, delete and refresh. Steps address records
// by 1-based list position (ref) as the list stands when the step runs, or
// by id. A step without expect must succeed; expect.error names the error
// kind ("validation" or "storage") the step must fail with. Setting
// storage_fails makes the store reject saves for that step only.
//
// # Assertion Types
//
//   - record_count: the ledger holds exactly count records
//   - duration: record ref has the expected duration
//   - total: the aggregate equals the expected duration
//   - total_text: the aggregate renders as text
//   - record_fields: record ref has the given field values
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory store with the calendar
// fixed at today and record ids counting up from 1, so traces are
// identical across runs and can be compared against golden files with
// RunWithGolden.
package harness
