// Package models defines the client-side data model of VerifyNow: the session
// credential and user profile, submissions, verification results with their
// evidence, history records, and the two verdict vocabularies together with
// the mapping between them.
package models
