package store

// Less functions defining each tuple type's canonical lexicographic order.
// Every observed relation is sorted according to the Less function for its
// shape; the store's double-write equality check and every Compare-pipeline
// mismatch depend on that order being consistent across both borrow-check
// variants.

func LessLoanIssuedAt(a, b LoanIssuedAt) bool {
	if a.Origin != b.Origin {
		return a.Origin < b.Origin
	}
	if a.Loan != b.Loan {
		return a.Loan < b.Loan
	}
	return a.Point < b.Point
}

func LessUniversalRegion(a, b UniversalRegion) bool { return a.Origin < b.Origin }

func LessCfgEdge(a, b CfgEdge) bool {
	if a.From != b.From {
		return a.From < b.From
	}
	return a.To < b.To
}

func LessLoanKilledAt(a, b LoanKilledAt) bool {
	if a.Loan != b.Loan {
		return a.Loan < b.Loan
	}
	return a.Point < b.Point
}

func LessSubsetBase(a, b SubsetBase) bool {
	if a.Origin1 != b.Origin1 {
		return a.Origin1 < b.Origin1
	}
	if a.Origin2 != b.Origin2 {
		return a.Origin2 < b.Origin2
	}
	return a.Point < b.Point
}

func LessLoanInvalidatedAt(a, b LoanInvalidatedAt) bool {
	if a.Loan != b.Loan {
		return a.Loan < b.Loan
	}
	return a.Point < b.Point
}

func LessVarUsedAt(a, b VarUsedAt) bool {
	if a.Var != b.Var {
		return a.Var < b.Var
	}
	return a.Point < b.Point
}

func LessVarDefinedAt(a, b VarDefinedAt) bool {
	if a.Var != b.Var {
		return a.Var < b.Var
	}
	return a.Point < b.Point
}

func LessVarDroppedAt(a, b VarDroppedAt) bool {
	if a.Var != b.Var {
		return a.Var < b.Var
	}
	return a.Point < b.Point
}

func LessUseOfVarDerefsOrigin(a, b UseOfVarDerefsOrigin) bool {
	if a.Var != b.Var {
		return a.Var < b.Var
	}
	return a.Origin < b.Origin
}

func LessDropOfVarDerefsOrigin(a, b DropOfVarDerefsOrigin) bool {
	if a.Var != b.Var {
		return a.Var < b.Var
	}
	return a.Origin < b.Origin
}

func LessChildPath(a, b ChildPath) bool {
	if a.Child != b.Child {
		return a.Child < b.Child
	}
	return a.Parent < b.Parent
}

func LessPathIsVar(a, b PathIsVar) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Var < b.Var
}

func LessPathAssignedAtBase(a, b PathAssignedAtBase) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Point < b.Point
}

func LessPathMovedAtBase(a, b PathMovedAtBase) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Point < b.Point
}

func LessPathAccessedAtBase(a, b PathAccessedAtBase) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Point < b.Point
}

func LessKnownPlaceholderSubsetBase(a, b KnownPlaceholderSubsetBase) bool {
	if a.Origin1 != b.Origin1 {
		return a.Origin1 < b.Origin1
	}
	return a.Origin2 < b.Origin2
}

func LessPlaceholder(a, b Placeholder) bool {
	if a.Origin != b.Origin {
		return a.Origin < b.Origin
	}
	return a.Loan < b.Loan
}

func LessCfgNode(a, b CfgNode) bool { return a.Point < b.Point }

func LessPathAssignedAt(a, b PathAssignedAt) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Point < b.Point
}

func LessPathMovedAt(a, b PathMovedAt) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Point < b.Point
}

func LessPathAccessedAt(a, b PathAccessedAt) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Point < b.Point
}

func LessPathBeginsWithVar(a, b PathBeginsWithVar) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Var < b.Var
}

func LessPathMaybeInitializedOnExit(a, b PathMaybeInitializedOnExit) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Point < b.Point
}

func LessPathMaybeUninitializedOnExit(a, b PathMaybeUninitializedOnExit) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Point < b.Point
}

func LessVarMaybePartlyInitOnExit(a, b VarMaybePartlyInitOnExit) bool {
	if a.Var != b.Var {
		return a.Var < b.Var
	}
	return a.Point < b.Point
}

func LessVarDroppedWhileInitAt(a, b VarDroppedWhileInitAt) bool {
	if a.Var != b.Var {
		return a.Var < b.Var
	}
	return a.Point < b.Point
}

func LessOriginLiveOnEntry(a, b OriginLiveOnEntry) bool {
	if a.Origin != b.Origin {
		return a.Origin < b.Origin
	}
	return a.Point < b.Point
}

func LessVarLiveOnEntry(a, b VarLiveOnEntry) bool {
	if a.Var != b.Var {
		return a.Var < b.Var
	}
	return a.Point < b.Point
}

func LessVarDropLiveOnEntry(a, b VarDropLiveOnEntry) bool {
	if a.Var != b.Var {
		return a.Var < b.Var
	}
	return a.Point < b.Point
}

func LessKnownPlaceholderSubset(a, b KnownPlaceholderSubset) bool {
	if a.Origin1 != b.Origin1 {
		return a.Origin1 < b.Origin1
	}
	return a.Origin2 < b.Origin2
}

func LessKnownPlaceholderRequires(a, b KnownPlaceholderRequires) bool {
	if a.Origin != b.Origin {
		return a.Origin < b.Origin
	}
	return a.Loan < b.Loan
}

func LessMoveError(a, b MoveError) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Point < b.Point
}

func LessLoanError(a, b LoanError) bool {
	if a.Loan != b.Loan {
		return a.Loan < b.Loan
	}
	return a.Point < b.Point
}

func LessSubsetError(a, b SubsetError) bool {
	if a.Origin1 != b.Origin1 {
		return a.Origin1 < b.Origin1
	}
	if a.Origin2 != b.Origin2 {
		return a.Origin2 < b.Origin2
	}
	return a.Point < b.Point
}

func LessPotentialError(a, b PotentialError) bool {
	if a.Loan != b.Loan {
		return a.Loan < b.Loan
	}
	return a.Point < b.Point
}

func LessPotentialSubsetError(a, b PotentialSubsetError) bool {
	if a.Origin1 != b.Origin1 {
		return a.Origin1 < b.Origin1
	}
	return a.Origin2 < b.Origin2
}

func LessOriginContainsLoanAt(a, b OriginContainsLoanAt) bool {
	if a.Origin != b.Origin {
		return a.Origin < b.Origin
	}
	if a.Loan != b.Loan {
		return a.Loan < b.Loan
	}
	return a.Point < b.Point
}

func LessOriginContainsLoanAnywhere(a, b OriginContainsLoanAnywhere) bool {
	if a.Origin != b.Origin {
		return a.Origin < b.Origin
	}
	return a.Loan < b.Loan
}

func LessSubsetAt(a, b SubsetAt) bool {
	if a.Origin1 != b.Origin1 {
		return a.Origin1 < b.Origin1
	}
	if a.Origin2 != b.Origin2 {
		return a.Origin2 < b.Origin2
	}
	return a.Point < b.Point
}

func LessSubsetAnywhere(a, b SubsetAnywhere) bool {
	if a.Origin1 != b.Origin1 {
		return a.Origin1 < b.Origin1
	}
	return a.Origin2 < b.Origin2
}

func LessLoanLiveAt(a, b LoanLiveAt) bool {
	if a.Loan != b.Loan {
		return a.Loan < b.Loan
	}
	return a.Point < b.Point
}

func LessSymmetryRemoved(a, b SymmetryRemoved) bool {
	return a.Count < b.Count
}
