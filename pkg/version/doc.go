// Package version implements the version codec and the version selector used
// by the resolver.
//
// # Codec
//
// Every published version maps to an integer sort key:
//
//	major*10^7 + minor*10^4 + patch*10 + delta
//
// where delta is 0 for a release, a small negative number for one of the
// prerelease [Tags] (wip is the lowest) and +1 for the legacy "next" tag, which
// ranks above the release it decorates. All "most recent" and "descending"
// orderings go through [SortKey] so prereleases always sort below the release
// they precede.
//
// The API key ([APIKey]) identifies runtime compatibility: the major version,
// or "0.<minor>" before 1.0.0.
//
// # Selector
//
// [Selector.Select] picks one concrete version out of a candidate list for a
// version spec. Fixed specs ([IsFixed]) must match exactly; range specs use npm
// semantics via github.com/Masterminds/semver/v3. When no release satisfies a
// range, a "-wip" build may be substituted (see [Selector.AllowWIPFallback]).
package version
