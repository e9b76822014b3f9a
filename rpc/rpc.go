package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/triviaserver/logger"
	"github.com/wfunc/triviaserver/models"
	"github.com/wfunc/triviaserver/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsService exposes profile and ranking reads for internal tooling.
// Methods follow the net/rpc signature rules.
type StatsService struct {
	users   *services.UserService
	results *services.ResultService
}

func NewStatsService(users *services.UserService, results *services.ResultService) *StatsService {
	return &StatsService{users: users, results: results}
}

type GetUserArgs struct {
	UserID string
}

type GetUserReply struct {
	Profile *models.UserProfile
	Stats   *models.UserStats
}

func (s *StatsService) GetUserWithStats(args *GetUserArgs, reply *GetUserReply) error {
	profile, stats, err := s.users.GetUserWithStats(args.UserID)
	if err != nil {
		return err
	}
	reply.Profile = profile
	reply.Stats = stats
	return nil
}

type GetRankingsArgs struct {
	Bucket string
	Limit  int
}

type GetRankingsReply struct {
	Entries []models.RankingEntry
}

func (s *StatsService) GetRankings(args *GetRankingsArgs, reply *GetRankingsReply) error {
	limit := args.Limit
	if limit <= 0 {
		limit = 100
	}
	entries, err := s.results.TopRankings(args.Bucket, limit)
	if err != nil {
		return err
	}
	reply.Entries = entries
	return nil
}
