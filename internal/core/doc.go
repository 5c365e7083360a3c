// Package core provides the employee domain and the streaming CSV import pipeline.
//
// The package holds all domain logic independent of the HTTP layer and of any
// particular database. Storage is reached through the [BatchWriter] and
// [EmployeeStore] interfaces.
//
// # Import Pipeline
//
// An import is a single forward pass over the request body with memory bounded
// by one batch:
//
//  1. [RowDecoder] strips a BOM, sanitizes UTF-8 and yields one CSV record at a
//     time. The first record is the header and is discarded.
//  2. [MapRow] turns a record into an [EmployeeRecord] and its [AddressRecord].
//     Bad dates, times and numbers become NULL; unknown genders become
//     [GenderUnknown]. Mapping never fails.
//  3. [Batcher] groups pairs into batches of [DefaultChunkSize].
//  4. [Importer] writes each batch in its own transaction. A failed batch is
//     rolled back, logged and recorded in the [ImportReport]; later batches
//     still run. Only a failure to read the stream ([ErrStreamRead]) aborts.
//
// Rows get a correlation id that counts data rows across the whole run,
// starting at 1. Each address carries the id of the employee from its row.
//
// # Concurrency
//
// [Service.Import] holds one [ImportLimiter] slot for the whole run. Imports
// are detached from request cancellation and bounded by a timeout instead.
// With spill enabled the body is first copied to a temp file ([Spill]);
// [RunSpillSweeper] removes files orphaned by crashes.
//
// A request-scoped logger attached with [ContextWithLogger] is used for all
// pipeline logs of that import.
//
// # Error Handling
//
// Batch errors are mapped to short coded messages with [MapError] for the
// failure sample of the report.
package core
