// Copyright 2022 Molecula Corp. All rights reserved.

package planner

import "github.com/prometheus/client_golang/prometheus"

const (
	MetricOperandChecks   = "operand_checks_total"
	MetricCallValidations = "call_validations_total"
)

// CounterOperandChecks counts overload probes by checker kind and outcome
// ("match" or "nomatch").
var CounterOperandChecks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "sqltypecheck",
		Name:      MetricOperandChecks,
		Help:      "Operand type checks run while resolving operator overloads.",
	},
	[]string{
		"checker",
		"result",
	},
)

// unknownOperatorLabel is the operator label of calls to operators missing
// from the table.
const unknownOperatorLabel = "unknown"

// CounterCallValidations counts validated calls by operator and outcome
// ("ok" or the error code).
var CounterCallValidations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "sqltypecheck",
		Name:      MetricCallValidations,
		Help:      "Calls validated, by operator and result.",
	},
	[]string{
		"operator",
		"result",
	},
)

func init() {
	prometheus.MustRegister(CounterOperandChecks)
	prometheus.MustRegister(CounterCallValidations)
}

// checkerKind is the checker label of CounterOperandChecks.
func checkerKind(c OperandTypeChecker) string {
	switch c.(type) {
	case *ArrayElementOperandTypeChecker:
		return "array_element"
	case *FamilyOperandTypeChecker:
		return "family"
	case *CompositeOperandTypeChecker:
		return "composite"
	default:
		return "other"
	}
}
