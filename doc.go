// Package grape validates and sanitizes nested data against schemas built
// from composable rule chains.
//
// A schema declares properties, each checked by a Validator. Validators
// hold ordered rules: a rule reads the current value, may replace it (trim,
// coerce "42" to 42, ...) and may report a failure. The first failure of a
// field stops its chain; other fields are still checked. Every failure is
// recorded under the dot-joined path of its field ("user.profile.age",
// "tags.1") and the values that passed are committed into a sanitized tree
// that mirrors the schema, leaving undeclared keys out.
//
// Design policy:
//   - Keep the engine and the built-in validators in the root package; put
//     resource-backed rules in store/ and probe/, cross-field rules in rules/.
//   - Validators are built once and shared; each Validate call owns its
//     messages and its sanitized tree.
//   - Validation failures never surface as errors. Errors are reserved for
//     broken schemas, unconvertible input and aborted passes.
//
// Typical usage:
//
//	s := grape.MustSchema(
//		grape.Prop("email", grape.NewString(true).Trim().Lowercase().Email().Required()),
//		grape.Prop("age", grape.NewInteger(false).Min(18)),
//		grape.Prop("tags", grape.Array(grape.NewString(true).Min(2), grape.DropInvalid)),
//	)
//	res, err := s.Validate(ctx, input)
//	if err != nil {
//		return err
//	}
//	if res.Failed() {
//		return res.Err()
//	}
//	clean := res.Sanitized()
package grape
