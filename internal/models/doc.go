// Package models defines the core domain models for fairsplit.
//
// Identity and membership are owned by the account system; ledger facts only
// ever reference member IDs. The three fact tables — expenses, expense
// shares, settlements — are immutable once written: corrections are new
// facts, never edits. Net balances are derived on every read and never
// stored, so they cannot drift from the ledger.
//
// All amounts are money.Cents (integer minor units).
package models
