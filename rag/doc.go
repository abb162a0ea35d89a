// Package rag indexes a project's base documents and retrieves them as
// context for generation.
//
// Ingestion runs inside the request that triggers it: every source of the
// project is downloaded, extracted, chunked, embedded and written in a single
// transaction, one source and one chunk at a time. Failures are absorbed per
// chunk or per source and logged; the only result is the processed count.
//
// Retrieval embeds the query, lets the database rank stored chunks and
// interpolates the matches into a fixed prompt template.
package rag
