package world

import (
	"log"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/yamux"
	"github.com/pkg/errors"
)

const DefaultPort = "8421"

type FetchColumnRequest struct {
	X, Z uint32
}

type FetchColumnResponse struct {
	Seed   uint32
	Blocks []byte
}

// TerrainService serves generated columns. Registered as "Terrain".
type TerrainService struct {
	seed   uint32
	source ColumnSource
}

func NewTerrainService(seed uint32, source ColumnSource) *TerrainService {
	return &TerrainService{seed: seed, source: source}
}

func (s *TerrainService) FetchColumn(req *FetchColumnRequest, rep *FetchColumnResponse) error {
	key := Key{req.X, req.Z}
	column, err := s.source.Column(key)
	if err != nil {
		return err
	}
	rep.Seed = s.seed
	rep.Blocks = EncodeColumn(column)
	return nil
}

type clientSession struct {
	ClientID int32
	conn     net.Conn
	ysess    *yamux.Session
}

type Server struct {
	*rpc.Server
	clientid int32
	sessions sync.Map

	mutex    sync.Mutex
	listener net.Listener
}

func NewServer(service *TerrainService) (*Server, error) {
	server := &Server{
		Server: rpc.NewServer(),
	}
	if err := server.RegisterName("Terrain", service); err != nil {
		return nil, errors.Wrap(err, "register terrain service")
	}
	return server, nil
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	id := atomic.AddInt32(&s.clientid, 1)
	log.Printf("allocated %d for %s", id, conn.RemoteAddr())

	ysess, err := yamux.Server(conn, nil)
	if err != nil {
		log.Print(err)
		return
	}
	defer ysess.Close()
	s.sessions.Store(id, &clientSession{ClientID: id, conn: conn, ysess: ysess})
	defer s.sessions.Delete(id)

	for {
		stream, err := ysess.Accept()
		if err != nil {
			break
		}
		go s.ServeCodec(jsonrpc.NewServerCodec(stream))
	}
	log.Printf("%s(%d) closed connection", conn.RemoteAddr(), id)
}

// Serve accepts connections until l is closed.
func (s *Server) Serve(l net.Listener) error {
	s.mutex.Lock()
	s.listener = l
	s.mutex.Unlock()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				log.Print(err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return errors.Wrap(err, "accept")
		}
		go s.handleConn(conn)
	}
}

// Sessions is the number of connected clients.
func (s *Server) Sessions() int {
	n := 0
	s.sessions.Range(func(k, v interface{}) bool {
		n++
		return true
	})
	return n
}

// Close stops accepting and drops every client.
func (s *Server) Close() error {
	s.mutex.Lock()
	l := s.listener
	s.mutex.Unlock()
	var err error
	if l != nil {
		err = l.Close()
	}
	s.sessions.Range(func(k, v interface{}) bool {
		v.(*clientSession).ysess.Close()
		return true
	})
	return err
}

// RemoteSource fetches columns from a terrain server. It is used by the
// chunk store loader in place of a local generator.
type RemoteSource struct {
	*rpc.Client
	Seed  uint32
	ysess *yamux.Session
}

// DialRemote connects to a terrain server. A missing port defaults to 8421.
func DialRemote(addr string) (*RemoteSource, error) {
	if strings.Index(addr, ":") == -1 {
		addr += ":" + DefaultPort
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	sess, err := yamux.Client(conn, nil)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "yamux client")
	}
	stream, err := sess.Open()
	if err != nil {
		sess.Close()
		return nil, errors.Wrap(err, "open stream")
	}
	r := &RemoteSource{
		Client: rpc.NewClientWithCodec(jsonrpc.NewClientCodec(stream)),
		ysess:  sess,
	}
	// learn the server seed so the local session store keys match
	rep := new(FetchColumnResponse)
	if err := r.Call("Terrain.FetchColumn", &FetchColumnRequest{}, rep); err != nil {
		r.Close()
		return nil, errors.Wrap(err, "handshake")
	}
	r.Seed = rep.Seed
	log.Printf("connected to terrain server %s seed %d", addr, r.Seed)
	return r, nil
}

func (r *RemoteSource) Column(key Key) ([]*Chunk, error) {
	rep := new(FetchColumnResponse)
	err := r.Call("Terrain.FetchColumn", &FetchColumnRequest{X: key.X, Z: key.Z}, rep)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch column %v", key)
	}
	return DecodeColumn(key, rep.Blocks)
}

func (r *RemoteSource) Close() error {
	err := r.Client.Close()
	r.ysess.Close()
	return err
}

const encodedColumnSize = ColumnChunks * ChunkWidth * ChunkWidth * ChunkWidth

// EncodeColumn packs a column one byte per block, chunk by chunk in
// [x][y][z] order.
func EncodeColumn(column []*Chunk) []byte {
	buf := make([]byte, 0, encodedColumnSize)
	for _, c := range column {
		for x := 0; x < ChunkWidth; x++ {
			for y := 0; y < ChunkWidth; y++ {
				for z := 0; z < ChunkWidth; z++ {
					buf = append(buf, byte(c.blocks[x][y][z].Type))
				}
			}
		}
	}
	return buf
}

func DecodeColumn(key Key, b []byte) ([]*Chunk, error) {
	if len(b) != encodedColumnSize {
		return nil, errors.Errorf("column %v: got %d bytes, want %d", key, len(b), encodedColumnSize)
	}
	column := make([]*Chunk, 0, ColumnChunks)
	i := 0
	for slot := 0; slot < ColumnChunks; slot++ {
		c := newChunk(key, slot)
		for x := 0; x < ChunkWidth; x++ {
			for y := 0; y < ChunkWidth; y++ {
				for z := 0; z < ChunkWidth; z++ {
					t := Type(b[i])
					if t >= numTypes {
						return nil, errors.Errorf("column %v: bad block type %d", key, t)
					}
					c.blocks[x][y][z] = NewBlock(t)
					i++
				}
			}
		}
		column = append(column, c)
	}
	return column, nil
}
