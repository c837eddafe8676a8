package dag

import (
	"fmt"
	"strings"
)

// Kind is the structural category of an operator.
type Kind int

const (
	KindCore Kind = iota
	KindUser
	KindInput
	KindOutput
	KindMarker
	KindFlow
)

var kindNames = []string{
	KindCore:   "core",
	KindUser:   "user",
	KindInput:  "input",
	KindOutput: "output",
	KindMarker: "marker",
	KindFlow:   "flow",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown operator kind: %q", s)
}

// Type identifies the semantic role of a core or user operator.  For user
// operators it corresponds to the operator annotation and for core
// operators to the core operator kind.
type Type int

const (
	None Type = iota
	Branch
	Convert
	Update
	Extract
	Project
	Extend
	Restructure
	Checkpoint
	Logging
	Split
	Fold
	Summarize
	MasterCheck
	MasterBranch
	MasterJoin
	MasterJoinUpdate
	CoGroup
	GroupSort
	numTypes
)

var typeNames = [numTypes]string{
	None:             "None",
	Branch:           "Branch",
	Convert:          "Convert",
	Update:           "Update",
	Extract:          "Extract",
	Project:          "Project",
	Extend:           "Extend",
	Restructure:      "Restructure",
	Checkpoint:       "Checkpoint",
	Logging:          "Logging",
	Split:            "Split",
	Fold:             "Fold",
	Summarize:        "Summarize",
	MasterCheck:      "MasterCheck",
	MasterBranch:     "MasterBranch",
	MasterJoin:       "MasterJoin",
	MasterJoinUpdate: "MasterJoinUpdate",
	CoGroup:          "CoGroup",
	GroupSort:        "GroupSort",
}

// String returns the simple name of the type, which is also the suffix of
// its estimator configuration key.
func (t Type) String() string {
	if t < 0 || t >= numTypes {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(t), nil
		}
	}
	return None, fmt.Errorf("unknown operator type: %q", s)
}

// Types returns every type other than None.
func Types() []Type {
	types := make([]Type, 0, numTypes-1)
	for t := None + 1; t < numTypes; t++ {
		types = append(types, t)
	}
	return types
}

// IsCore reports whether operators of type t are core operators rather
// than user operators.
func (t Type) IsCore() bool {
	switch t {
	case Project, Extend, Restructure, Checkpoint:
		return true
	}
	return false
}

// IsMasterJoin reports whether t belongs to the master-join family, whose
// first input is the master and whose second input is the transaction.
func (t Type) IsMasterJoin() bool {
	switch t {
	case MasterCheck, MasterBranch, MasterJoin, MasterJoinUpdate:
		return true
	}
	return false
}

// Unit is the granularity in which an input consumes its records.
type Unit int

const (
	UnitRecord Unit = iota
	UnitGroup
	UnitWhole
)

func (u Unit) String() string {
	switch u {
	case UnitRecord:
		return "record"
	case UnitGroup:
		return "group"
	case UnitWhole:
		return "whole"
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "", "record":
		return UnitRecord, nil
	case "group":
		return UnitGroup, nil
	case "whole":
		return UnitWhole, nil
	}
	return 0, fmt.Errorf("unknown input unit: %q", s)
}

// Buffer describes how the runtime materializes the records of one group.
type Buffer int

const (
	BufferHeap Buffer = iota
	BufferSpill
	BufferVolatile
)

func (b Buffer) String() string {
	switch b {
	case BufferHeap:
		return "heap"
	case BufferSpill:
		return "spill"
	case BufferVolatile:
		return "volatile"
	}
	return fmt.Sprintf("Buffer(%d)", int(b))
}

func ParseBuffer(s string) (Buffer, error) {
	switch strings.ToLower(s) {
	case "", "heap":
		return BufferHeap, nil
	case "spill":
		return BufferSpill, nil
	case "volatile":
		return BufferVolatile, nil
	}
	return 0, fmt.Errorf("unknown buffer type: %q", s)
}

// Aggregation is the partial aggregation mode declared on a fold or
// summarize operator.
type Aggregation int

const (
	AggregationDefault Aggregation = iota
	AggregationTotal
	AggregationPartial
)

func (a Aggregation) String() string {
	switch a {
	case AggregationDefault:
		return "DEFAULT"
	case AggregationTotal:
		return "TOTAL"
	case AggregationPartial:
		return "PARTIAL"
	}
	return fmt.Sprintf("Aggregation(%d)", int(a))
}

func ParseAggregation(s string) (Aggregation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "DEFAULT":
		return AggregationDefault, nil
	case "TOTAL":
		return AggregationTotal, nil
	case "PARTIAL":
		return AggregationPartial, nil
	}
	return 0, fmt.Errorf("unknown aggregation: %q", s)
}

// Level is the severity of a logging operator.  More severe levels
// compare greater.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return 0, fmt.Errorf("unknown logging level: %q", s)
}
