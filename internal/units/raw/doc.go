// Package raw implements transformation units for raw-data encodings:
// base64, base85, hex, ROT13, and a flag-pattern scanner.
//
// Each unit follows the same shape: Applicable is a cheap syntactic
// check against the target (printability, alphabet, length), Evaluate
// attempts the decode and declines with work.ErrNotApplicable when the
// content does not actually decode. Printable output is recursed on
// directly and reported as a result; binary output is written through
// the artifact sink and the engine recurses on the artifact path.
package raw
