package builtin

import "unicode"

// IdentifierIsConsumable implements spec.md §6.3's identifier_is_consumable
// predicate: a builtin or grammar reference is treated as a consuming
// native call purely from how its *name* is spelled — first rune uppercase,
// or a leading underscore followed by an uppercase rune — so a bootstrap
// grammar can tell Identifier/Integer/Word apart from print/chr/ast before
// any registry lookup happens. This is distinct from vm.Registry.IsConsumable,
// which reports whether an already-registered Builtin's Consuming flag is
// set; this predicate is the name-shape rule the (out-of-scope) surface
// grammar compiler would consult to resolve an unqualified identifier to a
// consuming call in the first place.
func IdentifierIsConsumable(name string) bool {
	runes := []rune(name)
	if len(runes) == 0 {
		return false
	}
	if unicode.IsUpper(runes[0]) {
		return true
	}
	if runes[0] == '_' && len(runes) > 1 && unicode.IsUpper(runes[1]) {
		return true
	}
	return false
}
