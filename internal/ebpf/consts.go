package ebpf

const (
	FilterName   string = "gelf_nonempty"
	udpHeaderLen int32  = 8
)
