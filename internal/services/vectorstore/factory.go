package vectorstore

// New builds the index selected by config.Backend.
func New(config *Config, embedder Embedder, logger Logger) (Index, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	switch config.Backend {
	case BackendPinecone:
		idx, err := NewPineconeIndex(config, embedder, logger)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return NewMemoryIndex(config, embedder, logger), nil
	}
}
