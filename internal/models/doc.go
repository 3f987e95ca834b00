// Package models defines the domain vocabulary of the search progress animation.
//
// The package contains three categories of types:
//
// 1. Catalog data: immutable descriptions of the visualized narrative
//   - [Stage] : one of the five ordered phases, with its sub-steps and nominal duration
//   - [SubStep] : a textual beat inside a stage, optionally carrying a dynamic value
//   - [Schedule] : per-stage durations derived once per run by the timing calculator
//
// 2. Runtime vocabulary shared by the controller and its readers
//   - [StageStatus] : pending, active, completed, error
//   - [ErrorKind], [AnimationError], [Action] : the closed failure taxonomy and its recovery affordances
//   - [SearchType] : semantic, keyword, hybrid
//
// 3. Persistent entities
//   - [Run] : a finished animation run recorded in the history table
package models
