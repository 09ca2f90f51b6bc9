package agentiface

import "testing"

func TestNewFakeSeedsDefaultTransport(t *testing.T) {
	f := NewFake()
	if got := f.GetCallbackInterval(); got != 60 {
		t.Fatalf("got %d, want 60", got)
	}
	ts := f.ListTransports()
	if len(ts) != 1 || ts[0].Name != "http" {
		t.Fatalf("got %v, want one http transport", ts)
	}
}

func TestSetConfigRoundTrip(t *testing.T) {
	f := NewFake()
	f.SetConfig("key", "value")
	if got := f.GetConfig()["key"]; got != "value" {
		t.Fatalf("got %q, want value", got)
	}
}

func TestFetchAssetMissing(t *testing.T) {
	f := NewFake()
	if _, err := f.FetchAsset("missing"); err == nil {
		t.Fatal("expected an error for a missing asset")
	}
}

func TestSetTransportUnknownName(t *testing.T) {
	f := NewFake()
	if err := f.SetTransport("dns"); err == nil {
		t.Fatal("expected an error for an unregistered transport")
	}
}

func TestSetTransportSwitchesActive(t *testing.T) {
	f := NewFake()
	f.Transports = append(f.Transports, Transport{Name: "dns", URI: "dns://c2"})
	if err := f.SetTransport("dns"); err != nil {
		t.Fatalf("SetTransport: %v", err)
	}
	if got := f.GetTransport(); got.Name != "dns" {
		t.Fatalf("got %+v, want dns", got)
	}
}

func TestReportCredentialRecordsIt(t *testing.T) {
	f := NewFake()
	cred := Credential{Kind: "ssh_key", User: "root", Material: "material"}
	if err := f.ReportCredential(cred); err != nil {
		t.Fatalf("ReportCredential: %v", err)
	}
	if len(f.ReportedCredentials) != 1 || f.ReportedCredentials[0] != cred {
		t.Fatalf("got %v", f.ReportedCredentials)
	}
}

func TestListTasksEmptyByDefault(t *testing.T) {
	f := NewFake()
	tasks, err := f.ListTasks()
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("got %v, want empty", tasks)
	}
}
