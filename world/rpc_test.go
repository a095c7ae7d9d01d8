package world

import (
	"net"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

func startTestServer(t *testing.T, seed uint32) (*Server, string) {
	t.Helper()
	gen, err := NewGenerator(testConfig(seed, 1))
	if err != nil {
		t.Fatal(err)
	}
	server, err := NewServer(NewTerrainService(seed, gen))
	if err != nil {
		t.Fatal(err)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go server.Serve(l)
	return server, l.Addr().String()
}

func TestRemoteColumnMatchesLocal(t *testing.T) {
	server, addr := startTestServer(t, 42)
	defer server.Close()

	remote, err := DialRemote(addr)
	if err != nil {
		t.Fatal(err)
	}
	defer remote.Close()
	if remote.Seed != 42 {
		t.Fatalf("remote seed %d", remote.Seed)
	}

	gen, _ := NewGenerator(testConfig(42, 1))
	for _, key := range []Key{{0, 0}, {7, 3}} {
		got, err := remote.Column(key)
		if err != nil {
			t.Fatal(err)
		}
		want, _ := gen.Column(key)
		if len(got) != len(want) {
			t.Fatalf("%v: %d chunks", key, len(got))
		}
		for i := range want {
			if got[i].Start() != want[i].Start() || *got[i].Blocks() != *want[i].Blocks() {
				t.Fatalf("%v chunk %d differs from local generation", key, i)
			}
		}
	}
}

func TestStoreWithRemoteSource(t *testing.T) {
	server, addr := startTestServer(t, 9)
	defer server.Close()

	remote, err := DialRemote(addr)
	if err != nil {
		t.Fatal(err)
	}
	defer remote.Close()

	s, err := NewChunkStore(testConfig(9, 1), WithSource(remote))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Update(mgl32.Vec3{})
	waitFor(t, "remote window", s.Idle)
	if n := len(s.LoadedKeys()); n != 4 {
		t.Fatalf("loaded %d columns", n)
	}
	if server.Sessions() != 1 {
		t.Errorf("server sessions %d", server.Sessions())
	}
}

func TestRemoteFailureIsRetried(t *testing.T) {
	server, addr := startTestServer(t, 5)
	remote, err := DialRemote(addr)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewChunkStore(testConfig(5, 0), WithSource(remote))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	server.Close()
	remote.Close()
	waitFor(t, "server shutdown", func() bool { return server.Sessions() == 0 })

	s.Update(mgl32.Vec3{})
	waitFor(t, "failed fetch", s.Idle)
	if st := s.Stat(); st.Failed != 1 || st.Loaded != 0 {
		t.Fatalf("stat %+v", st)
	}
	if _, err := DialRemote(addr); err == nil {
		t.Errorf("dial to closed server succeeded")
	}
}

func TestDecodeColumnRejectsGarbage(t *testing.T) {
	if _, err := DecodeColumn(Key{}, make([]byte, 10)); err == nil {
		t.Errorf("short column decoded")
	}
	b := make([]byte, encodedColumnSize)
	b[100] = 200
	if _, err := DecodeColumn(Key{}, b); err == nil {
		t.Errorf("bad block type decoded")
	}
	column, err := DecodeColumn(Key{1, 2}, make([]byte, encodedColumnSize))
	if err != nil {
		t.Fatal(err)
	}
	if column[3].Start() != (mgl32.Vec3{16, 48, 32}) {
		t.Errorf("start %v", column[3].Start())
	}
}

func TestServeReturnsAfterClose(t *testing.T) {
	gen, _ := NewGenerator(testConfig(1, 1))
	server, _ := NewServer(NewTerrainService(1, gen))
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- server.Serve(l) }()
	l.Close()
	select {
	case err := <-done:
		if err == nil {
			t.Errorf("Serve returned nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return")
	}
}
