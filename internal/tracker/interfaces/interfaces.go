package interfaces

type SchedulerInterface interface {
	Init()
	Restore()
	Persist()
	Stop()
}

type CompressorInterface interface {
	Compress(data []byte) []byte
	Decompress(data []byte) ([]byte, error)
}

type StateManagerInterface interface {
	SaveToFile(fileName string) error
	LoadFromFile(fileName string) error
}
