// Package ledger provides an HTTP client for a bch-api compatible Bitcoin
// Cash REST endpoint. It implements domain.LedgerIndex.
//
// Supported operations:
//   - Fetching verbose transactions, with input addresses resolved from the
//     outputs they spend.
//   - Listing the unspent outputs of an address.
//   - Listing the transaction history of an address, most recent first.
//   - Broadcasting a signed transaction.
//
// Every request is rate limited and carries the caller's context. Non-2xx
// statuses are returned as errors with the method, path, status and the
// server's error text.
package ledger
