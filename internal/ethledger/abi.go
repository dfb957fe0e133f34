package ethledger

// marketplaceABI covers the subset of the marketplace contract this service
// calls.
const marketplaceABI = `[
  {"type":"function","name":"readProduct","stateMutability":"view",
   "inputs":[{"name":"_index","type":"uint256"}],
   "outputs":[
     {"name":"creator","type":"address"},
     {"name":"owner","type":"address"},
     {"name":"name","type":"string"},
     {"name":"image","type":"string"},
     {"name":"description","type":"string"},
     {"name":"location","type":"string"},
     {"name":"highestBidder","type":"address"},
     {"name":"highestBid","type":"uint256"},
     {"name":"stillOpen","type":"bool"}
   ]},
  {"type":"function","name":"getProductsLength","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"placeBid","stateMutability":"payable",
   "inputs":[{"name":"_index","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"closeBid","stateMutability":"nonpayable",
   "inputs":[{"name":"_index","type":"uint256"}],
   "outputs":[]}
]`

const (
	methodRead   = "readProduct"
	methodLength = "getProductsLength"
	methodBid    = "placeBid"
	methodClose  = "closeBid"
)
