// Package fieldmap reconciles raw selector observations into canonical fields.
//
// The mapper runs four steps in order:
//
//  1. Direct match: each observed selector is resolved through a static
//     selector table; when the full selector is unknown, its id fragment is
//     tried alone so wrapper markup can drift while ids persist.
//  2. Fallback: fields still unresolved are looked up in the diagnostic dump
//     (raw id/name -> value) with case-insensitive, punctuation-stripped keys.
//  3. Multi-part reconstruction: split identifiers (national ID segments) are
//     joined from their named parts in order, or from structurally matched
//     selectors in discovery order when no named part exists.
//  4. Derived composition: the city is appended to the address unless the
//     address already mentions it.
//
// Step 1 always wins over step 2, and named parts win over structural ones.
package fieldmap
