// Package mailer provides outbound transactional email for the shop backend.
//
// It separates three concerns:
//
//   - Variable substitution: [Render] replaces {{token}} placeholders in
//     template strings with caller-provided values. Substitution is
//     best-effort: unknown tokens are left verbatim and nil values render
//     as empty strings. No HTML escaping is performed; callers must
//     pre-sanitize user-supplied values (see pkg/sanitizer).
//   - Plain-text fallback: [HTMLToText] derives a readable text body from
//     rendered HTML by dropping style blocks, stripping tags, and
//     collapsing blank lines.
//   - Delivery: [Mailer] dispatches a prepared subject/HTML/text triple
//     through a [Sender] implementation (see the resend subpackage).
//     When no transport is configured the Mailer degrades gracefully and
//     reports a failed [SendResult] instead of returning an error, so an
//     unconfigured dev environment never breaks business flows.
//
// Send outcomes are values, not errors: a [SendResult] carries success,
// the provider message id, and an error string. Orchestration code treats
// failed sends as expected runtime states.
package mailer
