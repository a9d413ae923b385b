package errx

// WrapProvider wraps an embedding or LLM provider failure.
func WrapProvider(err error) *Error {
	if err == nil {
		return nil
	}
	return New(err, KindProvider, ProviderErrorMessage)
}

// WrapStore wraps a vector store failure.
func WrapStore(err error) *Error {
	if err == nil {
		return nil
	}
	return New(err, KindStore, StoreErrorMessage)
}

// WrapToolContract wraps a tool schema violation.
func WrapToolContract(err error) *Error {
	if err == nil {
		return nil
	}
	return New(err, KindToolContract, ToolContractMessage)
}
