package config

type WorkerKeyStruct struct {
	PlagiarismOutboxQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PlagiarismOutboxQueue: "plagiarism_outbox_queue",
}
