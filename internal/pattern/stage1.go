package pattern

// stage1Patterns are the cheap structural signals scanned during the wide
// first pass: file magics, PE landmarks and the API strings that keep
// showing up in Windows malware.
func stage1Patterns() []*Pattern {
	return []*Pattern{
		{
			Description: "OLE2 header magic",
			Literal:     "\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1",
			Weight:      10,
		},
		{
			Description: "VBA Macros",
			Literal:     "VBA",
		},
		{
			Description: "Flash OLE signatures",
			Literals: []string{
				"ShockwaveFlash.ShockwaveFlash",
				"S\x00h\x00o\x00c\x00k\x00w\x00a\x00v\x00e\x00F\x00l\x00a\x00s\x00h",
			},
			Weight: 10,
		},
		{
			Description: "PDF signatures",
			Literals:    []string{"%PDF-", "%EOF"},
			Weight:      10,
		},
		{
			Description: "RTF signatures",
			Literals:    []string{"{\\rtf", "{\\object"},
			Weight:      10,
		},
		{
			Description: "DOS compatibility message",
			Literal:     "This program cannot be run in DOS mode",
			Weight:      1000,
		},
		{
			Description: "PE header magic",
			Literal:     "PE",
		},
		{
			Description: "EXE MZ header magics",
			Literals:    []string{"MZ", "ZM"},
		},
		{
			Description: "PE section names",
			Literals:    []string{".text", ".data", ".rdata", ".rsrc", ".reloc"},
		},
		{
			Description: "Common EXE strings",
			NoCase:      true,
			Literals: []string{
				"program", "cannot", "mode", "microsoft",
				"kernel32", "version", "assembly",
				"xmlns", "schemas", "manifestVersion",
				"security", "win32",
			},
			Weight: 100000,
		},
		{
			Description: "Common Win32 function names",
			NoCase:      true,
			Literals:    []string{"GetCurrent", "Thread"},
			Weight:      10000,
		},
		{
			Description: "Interesting Win32 function names",
			NoCase:      true,
			Literals: []string{
				"WriteFile", "IsDebuggerPresent",
				"RegSetValue", "CreateRemoteThread",
			},
			Weight: 10000,
		},
		{
			Description: "Interesting WinSock function names",
			NoCase:      true,
			Literals:    []string{"WSASocket", "WSASend", "WSARecv"},
			Weight:      10000,
		},
		{
			Description: "Interesting DLLs",
			NoCase:      true,
			Literals:    []string{"WS2_32.dll"},
			Weight:      10000,
		},
		{
			Description: "Interesting registry keys",
			Literals:    []string{"CurrentVersion\\Run", "UserInit"},
			Weight:      10000,
		},
		{
			Description: "Possibly compiled with Microsoft Visual C++",
			Literal:     "Microsoft Visual C++",
			Weight:      10000,
		},
	}
}
