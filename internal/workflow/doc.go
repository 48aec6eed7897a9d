// Package workflow wires the donor onboarding stages together: directory,
// editor, and duplicate review. Control flows strictly one way, directory
// to editor to review and back, with no background work; each stage is a
// thin orchestration over the donor API client.
package workflow
